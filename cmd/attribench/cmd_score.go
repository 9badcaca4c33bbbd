package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/attribench/attribench/internal/config"
	"github.com/attribench/attribench/internal/models"
	"github.com/attribench/attribench/internal/orchestration"
	"github.com/attribench/attribench/internal/providers"
	"github.com/attribench/attribench/internal/reporting"
	"github.com/attribench/attribench/internal/scoring"
)

var (
	outputPath     string
	junitPath      string
	verbose        bool
	parallel       bool
	workers        int
	interpret      bool
	format         string
	modelOverrides []string
	judgeModel     string
	judgeBaseURL   string
	judgeKeyVar    string
	resolveTimeout time.Duration
)

func newScoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <suite.yaml>",
		Short: "Score response batches against a suite spec",
		Long: `Score pre-collected response batches against a suite spec.

The suite spec names the models and tasks to score and where each task's
response batches live. Relative batch paths resolve against the spec
file's directory.

The analytic task needs an LLM judge for translation adequacy and
summary faithfulness; configure it with --judge-model.`,
		Args: cobra.ExactArgs(1),
		RunE: scoreCommandE,
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output JSON file for results")
	cmd.Flags().StringVar(&junitPath, "junit", "", "Output JUnit XML file for CI")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output with detailed progress")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Score (model, task) pairs concurrently")
	cmd.Flags().IntVar(&workers, "workers", 0, "Number of concurrent workers (default: 4, requires --parallel)")
	cmd.Flags().BoolVar(&interpret, "interpret", false, "Print a plain-language interpretation of the results")
	cmd.Flags().StringVar(&format, "format", "default", "Output format: default, github-comment")
	cmd.Flags().StringArrayVar(&modelOverrides, "model", nil, "Model to score (overrides spec models, can be repeated)")
	cmd.Flags().StringVar(&judgeModel, "judge-model", "", "Judge model for adequacy/faithfulness scoring")
	cmd.Flags().StringVar(&judgeBaseURL, "judge-base-url", "", "Base URL for the judge endpoint (default: OpenAI)")
	cmd.Flags().StringVar(&judgeKeyVar, "judge-key-env", "OPENAI_API_KEY", "Environment variable holding the judge API key")
	cmd.Flags().DurationVar(&resolveTimeout, "resolve-timeout", 0, "Per-link timeout for citation resolution (default: 4s)")

	return cmd
}

func scoreCommandE(cmd *cobra.Command, args []string) error {
	suitePath := args[0]

	spec, err := models.LoadSuiteSpec(suitePath)
	if err != nil {
		return fmt.Errorf("failed to load suite spec: %w", err)
	}

	// CLI flags override spec config
	if parallel {
		spec.Config.Concurrent = true
	}
	if workers > 0 {
		spec.Config.Workers = workers
	}
	if len(modelOverrides) > 0 {
		spec.Models = modelOverrides
	}

	absSuitePath, err := filepath.Abs(suitePath)
	if err != nil {
		absSuitePath = suitePath
	}
	suiteDir := filepath.Dir(absSuitePath)

	cfg := config.NewScoringConfig(spec,
		config.WithSuiteDir(suiteDir),
		config.WithOutputPath(outputPath),
		config.WithVerbose(verbose),
	)

	deps, err := buildCollaborators(spec)
	if err != nil {
		return err
	}

	runner := orchestration.NewRunner(cfg, deps)
	if verbose {
		runner.OnProgress(verboseProgressListener)
	} else {
		runner.OnProgress(simpleProgressListener)
	}

	fmt.Printf("Scoring suite: %s\n", spec.Name)
	fmt.Printf("Models: %d, Tasks: %d\n", len(spec.Models), len(spec.Tasks))
	if spec.Config.Concurrent {
		w := spec.Config.Workers
		if w <= 0 {
			w = 4
		}
		fmt.Printf("Parallel: %d workers\n", w)
	}
	fmt.Println()

	suite, err := runner.Run(context.Background())
	if err != nil {
		return fmt.Errorf("scoring failed: %w", err)
	}

	switch format {
	case "github-comment":
		fmt.Print(FormatGitHubComment(suite))
	case "default":
		printSummary(suite)
		if interpret {
			fmt.Println()
			fmt.Print(reporting.FormatSummaryReport(suite))
		}
	default:
		return fmt.Errorf("unknown output format: %s (supported: default, github-comment)", format)
	}

	if outputPath != "" {
		if err := reporting.WriteSuiteJSON(suite, outputPath); err != nil {
			return fmt.Errorf("failed to save output: %w", err)
		}
		fmt.Printf("\nResults saved to: %s\n", outputPath)
	}
	if junitPath != "" {
		if err := reporting.WriteJUnitXML(suite, junitPath); err != nil {
			return fmt.Errorf("failed to save JUnit XML: %w", err)
		}
		fmt.Printf("JUnit XML saved to: %s\n", junitPath)
	}

	failed := 0
	for i := range suite.Reports {
		if !suite.Reports[i].Pass {
			failed++
		}
	}
	if failed > 0 {
		return &GateFailureError{
			Message: fmt.Sprintf("scoring completed with %d of %d pair(s) failing the gate", failed, len(suite.Reports)),
		}
	}

	return nil
}

// buildCollaborators wires the external capabilities scoring needs. The
// judge is only built when the suite actually runs the analytic task.
func buildCollaborators(spec *models.SuiteSpec) (scoring.Collaborators, error) {
	deps := scoring.Collaborators{
		Resolver: providers.NewHTTPLinkResolver(resolveTimeout),
	}

	needsJudge := false
	for i := range spec.Tasks {
		if spec.Tasks[i].Task == models.TaskAnalytic {
			needsJudge = true
		}
	}
	if !needsJudge {
		return deps, nil
	}

	if judgeModel == "" {
		return deps, fmt.Errorf("the analytic task requires --judge-model")
	}

	creds, err := config.LoadCredentials(judgeKeyVar, "")
	if err != nil {
		return deps, fmt.Errorf("judge credentials: %w", err)
	}

	client, err := providers.NewOpenAIClient(providers.OpenAIClientArgs{
		APIKey:  creds.APIKey,
		BaseURL: judgeBaseURL,
		Model:   judgeModel,
	})
	if err != nil {
		return deps, fmt.Errorf("building judge client: %w", err)
	}

	judge, err := providers.NewJudgeScorer(client)
	if err != nil {
		return deps, err
	}
	deps.Quality = judge
	deps.Faithfulness = judge

	return deps, nil
}

func verboseProgressListener(event orchestration.ProgressEvent) {
	switch event.EventType {
	case orchestration.EventSuiteStart:
		fmt.Printf("Starting suite with %d (model, task) pair(s)...\n\n", event.TotalPairs)
	case orchestration.EventPairStart:
		fmt.Printf("[%d/%d] Scoring %s / %s\n", event.PairNum, event.TotalPairs, event.Model, event.Task)
	case orchestration.EventPairComplete:
		duration := time.Duration(event.DurationMs) * time.Millisecond
		gate := "pass"
		if !event.Pass {
			gate = "FAIL"
		}
		fmt.Printf("[%d/%d] %s / %s: overall=%.3f %s (%v)\n",
			event.PairNum, event.TotalPairs, event.Model, event.Task, event.Overall, gate, duration)
	case orchestration.EventSuiteComplete:
		duration := time.Duration(event.DurationMs) * time.Millisecond
		fmt.Printf("\nSuite completed in %v\n\n", duration)
	}
}

func simpleProgressListener(event orchestration.ProgressEvent) {
	if event.EventType != orchestration.EventPairComplete {
		return
	}
	status := "✓"
	if !event.Pass {
		status = "✗"
	}
	fmt.Printf("%s [%d/%d] %s / %s\n", status, event.PairNum, event.TotalPairs, event.Model, event.Task)
}
