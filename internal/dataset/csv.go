// Package dataset loads response batches (JSONL or CSV) into
// EvaluationRecords for scoring.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/attribench/attribench/internal/models"
)

// Row represents a single CSV row with column name to value mapping.
type Row map[string]string

// LoadCSV reads a CSV file and returns rows as maps of column to value.
// The first row is treated as headers (column names).
func LoadCSV(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	headers := records[0]
	rows := make([]Row, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = record[j]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// RecordsFromRows converts CSV rows to EvaluationRecords for a task.
// Row order is preserved. Column names follow the batch formats the
// collectors write: "answer" (or "model_answer") for the response text,
// task-specific gold columns otherwise.
func RecordsFromRows(rows []Row, task models.Task) ([]models.EvaluationRecord, error) {
	records := make([]models.EvaluationRecord, 0, len(rows))

	for i, row := range rows {
		rec := models.EvaluationRecord{
			ID:          rowID(row, i),
			ModelOutput: firstOf(row, "model_output", "model_answer", "answer"),
			Category:    models.Category(row["category"]),
		}

		switch task {
		case models.TaskAnalytic:
			rec.Gold = models.Gold{
				Answer:      row["gold_answer"],
				SourceText:  row["source_text"],
				Translation: row["gold_translation"],
				Summary:     firstOf(row, "gold_summary", "reference_summary"),
			}
		case models.TaskCitation:
			// Citation batches carry only the response; everything scored
			// is derived from the output text.
		case models.TaskFactuality:
			trueRefs, err := parseRefList(row["true_refs"])
			if err != nil {
				return nil, fmt.Errorf("csv: row %d true_refs: %w", i+2, err)
			}
			falseRefs, err := parseRefList(row["false_refs"])
			if err != nil {
				return nil, fmt.Errorf("csv: row %d false_refs: %w", i+2, err)
			}
			rec.Gold = models.Gold{
				TrueRefs:           trueRefs,
				FalseRefs:          falseRefs,
				RightAnswer:        row["right_answer"],
				HallucinatedAnswer: row["hallucinated_answer"],
				Knowledge:          row["knowledge"],
			}
		case models.TaskUncertainty:
			rec.Gold = models.Gold{Answer: firstOf(row, "gold_answer_text", "gold_answer")}
		default:
			return nil, fmt.Errorf("csv: unsupported task %q", task)
		}

		records = append(records, rec)
	}

	return records, nil
}

// parseRefList decodes a reference set stored as a JSON array. A plain
// string becomes a single-element set; empty stays empty.
func parseRefList(value string) ([]string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if strings.HasPrefix(value, "[") {
		var refs []string
		if err := json.Unmarshal([]byte(value), &refs); err != nil {
			return nil, fmt.Errorf("parsing reference list: %w", err)
		}
		return refs, nil
	}
	return []string{value}, nil
}

func rowID(row Row, index int) string {
	if v := row["id"]; v != "" {
		return v
	}
	return fmt.Sprintf("row-%d", index+1)
}

func firstOf(row Row, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != "" {
			return v
		}
	}
	return ""
}
