package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/attribench/attribench/internal/models"
)

// StructuredParser converts raw model output into a StructuredAnswer for
// tasks that expect a JSON payload. A parser must never fail: output it
// cannot recover yields an answer with all presence flags cleared.
type StructuredParser func(raw string) *models.StructuredAnswer

// jsonlRecord is the wire shape of one response line.
type jsonlRecord struct {
	ID          string          `json:"id"`
	ModelOutput json.RawMessage `json:"model_output"`
	Category    string          `json:"category"`
	Gold        jsonlGold       `json:"gold"`
}

type jsonlGold struct {
	Answer       string   `json:"gold_answer"`
	AnswerText   string   `json:"gold_answer_text"`
	SourceText   string   `json:"source_text"`
	Translation  string   `json:"gold_translation"`
	Summary      string   `json:"gold_summary"`
	RefSummary   string   `json:"reference_summary"`
	TrueRefs     []string `json:"true_refs"`
	FalseRefs    []string `json:"false_refs"`
	RightAnswer  string   `json:"right_answer"`
	Hallucinated string   `json:"hallucinated_answer"`
	Knowledge    string   `json:"knowledge"`
}

// LoadJSONL reads a line-delimited response batch into EvaluationRecords,
// preserving input order. For tasks that expect structured payloads the
// parser is applied to each record's raw output; pass nil otherwise.
//
// A null or non-string model_output is treated as empty text rather than
// an error.
func LoadJSONL(path string, task models.Task, parse StructuredParser) ([]models.EvaluationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("jsonl: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var records []models.EvaluationRecord

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var wire jsonlRecord
		if err := json.Unmarshal([]byte(line), &wire); err != nil {
			return nil, fmt.Errorf("jsonl: %s line %d: %w", filepath.Base(path), lineNum, err)
		}

		rec := models.EvaluationRecord{
			ID:          wire.ID,
			ModelOutput: outputText(wire.ModelOutput),
			Category:    models.Category(wire.Category),
			Gold: models.Gold{
				Answer:             firstNonEmpty(wire.Gold.Answer, wire.Gold.AnswerText),
				SourceText:         wire.Gold.SourceText,
				Translation:        wire.Gold.Translation,
				Summary:            firstNonEmpty(wire.Gold.Summary, wire.Gold.RefSummary),
				TrueRefs:           wire.Gold.TrueRefs,
				FalseRefs:          wire.Gold.FalseRefs,
				RightAnswer:        wire.Gold.RightAnswer,
				HallucinatedAnswer: wire.Gold.Hallucinated,
				Knowledge:          wire.Gold.Knowledge,
			},
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("line-%d", lineNum)
		}
		if parse != nil {
			rec.Structured = parse(rec.ModelOutput)
		}

		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: reading %s: %w", path, err)
	}

	return records, nil
}

// Load picks the loader from the file extension: .jsonl/.ndjson for
// line-delimited JSON, .csv for tabular batches.
func Load(path string, task models.Task, parse StructuredParser) ([]models.EvaluationRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return LoadJSONL(path, task, parse)
	case ".csv":
		rows, err := LoadCSV(path)
		if err != nil {
			return nil, err
		}
		records, err := RecordsFromRows(rows, task)
		if err != nil {
			return nil, err
		}
		if parse != nil {
			for i := range records {
				records[i].Structured = parse(records[i].ModelOutput)
			}
		}
		return records, nil
	default:
		return nil, fmt.Errorf("dataset: unsupported batch format %q", filepath.Ext(path))
	}
}

// outputText extracts the response text. Null or non-string output is
// treated as empty text.
func outputText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
