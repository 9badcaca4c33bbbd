package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/attribench/attribench/internal/config"
	"github.com/attribench/attribench/internal/providers"
)

var (
	collectModel       string
	collectBaseURL     string
	collectKeyVar      string
	collectOutput      string
	collectSystem      string
	collectTemperature float32
	collectWorkers     int
	collectStructured  bool
)

// structuredInstructions asks the model to answer in the JSON shape the
// uncertainty pipeline parses.
const structuredInstructions = `

Respond with a JSON object only, in this exact shape:
{"answer": "<your answer, or null if you cannot answer>", "confidence": <0.0-1.0>, "confidence_label": "low|medium|high", "rationale": "<one sentence>"}`

func newCollectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect <prompts.jsonl>",
		Short: "Collect model responses for a prompt batch",
		Long: `Collect model responses for a prompt batch.

Each input line is a JSON object with "id" and "prompt"; every other
field is passed through unchanged so gold data stays attached to its
record. The output adds "model_output" to each line.

Credentials come from the environment (a .env file is honored). Point
--base-url at any OpenAI-compatible endpoint.`,
		Args: cobra.ExactArgs(1),
		RunE: collectCommandE,
	}

	cmd.Flags().StringVar(&collectModel, "model", "", "Model to query (required)")
	cmd.Flags().StringVar(&collectBaseURL, "base-url", "", "Base URL for the endpoint (default: OpenAI)")
	cmd.Flags().StringVar(&collectKeyVar, "key-env", "OPENAI_API_KEY", "Environment variable holding the API key")
	cmd.Flags().StringVarP(&collectOutput, "output", "o", "", "Output JSONL file (required)")
	cmd.Flags().StringVar(&collectSystem, "system", "", "System prompt sent with every request")
	cmd.Flags().Float32Var(&collectTemperature, "temperature", 0, "Sampling temperature")
	cmd.Flags().IntVar(&collectWorkers, "workers", 4, "Number of concurrent requests")
	cmd.Flags().BoolVar(&collectStructured, "structured", false, "Request the structured JSON answer shape")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// promptLine is one input record: id and prompt are interpreted, the
// rest is carried through untouched.
type promptLine struct {
	id     string
	prompt string
	fields map[string]json.RawMessage
}

func collectCommandE(cmd *cobra.Command, args []string) error {
	lines, err := loadPromptLines(args[0])
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return fmt.Errorf("no prompts found in %s", args[0])
	}

	creds, err := config.LoadCredentials(collectKeyVar, "")
	if err != nil {
		return err
	}

	client, err := providers.NewOpenAIClient(providers.OpenAIClientArgs{
		APIKey:      creds.APIKey,
		BaseURL:     collectBaseURL,
		Model:       collectModel,
		Temperature: collectTemperature,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Collecting %d response(s) from %s\n", len(lines), collectModel)
	start := time.Now()

	outputs := make([]string, len(lines))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(collectWorkers)

	for i, line := range lines {
		g.Go(func() error {
			prompt := line.prompt
			if collectStructured {
				prompt += structuredInstructions
			}
			response, err := client.Complete(ctx, providers.CompletionRequest{
				System: collectSystem,
				Prompt: prompt,
			})
			if err != nil {
				return fmt.Errorf("record %s: %w", line.id, err)
			}
			outputs[i] = response
			fmt.Printf("✓ %s\n", line.id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := writeResponses(collectOutput, lines, outputs); err != nil {
		return err
	}

	fmt.Printf("\nCollected %d response(s) in %v\n", len(lines), time.Since(start).Round(time.Millisecond))
	fmt.Printf("Responses saved to: %s\n", collectOutput)
	return nil
}

func loadPromptLines(path string) ([]promptLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck

	var lines []promptLine
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		fields := map[string]json.RawMessage{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, lineNum, err)
		}

		var pl promptLine
		pl.fields = fields
		if raw, ok := fields["id"]; ok {
			_ = json.Unmarshal(raw, &pl.id)
		}
		if pl.id == "" {
			pl.id = fmt.Sprintf("line-%d", lineNum)
		}
		if raw, ok := fields["prompt"]; ok {
			_ = json.Unmarshal(raw, &pl.prompt)
		}
		if pl.prompt == "" {
			return nil, fmt.Errorf("%s line %d: missing prompt", path, lineNum)
		}

		lines = append(lines, pl)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func writeResponses(path string, lines []promptLine, outputs []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	w := bufio.NewWriter(f)
	for i, line := range lines {
		record := make(map[string]json.RawMessage, len(line.fields)+1)
		for k, v := range line.fields {
			record[k] = v
		}
		delete(record, "prompt")

		output, err := json.Marshal(outputs[i])
		if err != nil {
			return err
		}
		record["model_output"] = output

		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return w.Flush()
}
