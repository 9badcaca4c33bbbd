package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attribench/attribench/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadJSONL(t *testing.T) {
	t.Run("loads records in order", func(t *testing.T) {
		path := writeFile(t, "batch.jsonl", `{"id":"a","model_output":"first","category":"math","gold":{"gold_answer":"42"}}
{"id":"b","model_output":"second","category":"factual","gold":{"true_refs":["x"],"false_refs":["y"]}}
`)

		records, err := LoadJSONL(path, models.TaskFactuality, nil)
		require.NoError(t, err)
		require.Len(t, records, 2)
		require.Equal(t, "a", records[0].ID)
		require.Equal(t, "first", records[0].ModelOutput)
		require.Equal(t, models.CategoryMath, records[0].Category)
		require.Equal(t, "42", records[0].Gold.Answer)
		require.Equal(t, []string{"x"}, records[1].Gold.TrueRefs)
		require.Equal(t, []string{"y"}, records[1].Gold.FalseRefs)
	})

	t.Run("null output becomes empty text", func(t *testing.T) {
		path := writeFile(t, "batch.jsonl", `{"id":"a","model_output":null,"gold":{}}
{"id":"b","model_output":17,"gold":{}}
`)

		records, err := LoadJSONL(path, models.TaskCitation, nil)
		require.NoError(t, err)
		require.Equal(t, "", records[0].ModelOutput)
		require.Equal(t, "", records[1].ModelOutput)
	})

	t.Run("missing ids default to line numbers", func(t *testing.T) {
		path := writeFile(t, "batch.jsonl", `{"model_output":"x","gold":{}}

{"model_output":"y","gold":{}}
`)

		records, err := LoadJSONL(path, models.TaskCitation, nil)
		require.NoError(t, err)
		require.Len(t, records, 2)
		require.Equal(t, "line-1", records[0].ID)
		require.Equal(t, "line-3", records[1].ID)
	})

	t.Run("gold fallback column names", func(t *testing.T) {
		path := writeFile(t, "batch.jsonl", `{"id":"a","model_output":"x","gold":{"gold_answer_text":"alt","reference_summary":"ref"}}
`)

		records, err := LoadJSONL(path, models.TaskAnalytic, nil)
		require.NoError(t, err)
		require.Equal(t, "alt", records[0].Gold.Answer)
		require.Equal(t, "ref", records[0].Gold.Summary)
	})

	t.Run("structured parser applies per record", func(t *testing.T) {
		path := writeFile(t, "batch.jsonl", `{"id":"a","model_output":"{\"answer\":\"x\"}","gold":{}}
`)

		parse := func(raw string) *models.StructuredAnswer {
			return &models.StructuredAnswer{Answer: raw, HasAnswer: true}
		}

		records, err := LoadJSONL(path, models.TaskUncertainty, parse)
		require.NoError(t, err)
		require.NotNil(t, records[0].Structured)
		require.True(t, records[0].Structured.HasAnswer)
	})

	t.Run("malformed line reports its number", func(t *testing.T) {
		path := writeFile(t, "batch.jsonl", `{"id":"a","model_output":"x","gold":{}}
not json
`)

		_, err := LoadJSONL(path, models.TaskCitation, nil)
		require.ErrorContains(t, err, "line 2")
	})
}

func TestLoadCSV(t *testing.T) {
	t.Run("maps header to columns", func(t *testing.T) {
		path := writeFile(t, "batch.csv", "id,answer,gold_answer\nr1,forty two,42\n")

		rows, err := LoadCSV(path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		require.Equal(t, "forty two", rows[0]["answer"])
	})

	t.Run("rejects ragged rows", func(t *testing.T) {
		path := writeFile(t, "batch.csv", "id,answer\nr1\n")

		_, err := LoadCSV(path)
		require.Error(t, err)
	})

	t.Run("rejects empty file", func(t *testing.T) {
		path := writeFile(t, "batch.csv", "")

		_, err := LoadCSV(path)
		require.ErrorContains(t, err, "empty")
	})
}

func TestRecordsFromRows(t *testing.T) {
	t.Run("factuality refs parse from json arrays", func(t *testing.T) {
		rows := []Row{{
			"id":         "f1",
			"answer":     "the output",
			"true_refs":  `["a","b"]`,
			"false_refs": "single claim",
		}}

		records, err := RecordsFromRows(rows, models.TaskFactuality)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, records[0].Gold.TrueRefs)
		require.Equal(t, []string{"single claim"}, records[0].Gold.FalseRefs)
	})

	t.Run("malformed ref list fails with row number", func(t *testing.T) {
		rows := []Row{{"true_refs": `["unterminated`}}

		_, err := RecordsFromRows(rows, models.TaskFactuality)
		require.ErrorContains(t, err, "row 2")
	})

	t.Run("output column fallbacks", func(t *testing.T) {
		rows := []Row{
			{"model_output": "primary"},
			{"model_answer": "secondary"},
			{"answer": "tertiary"},
		}

		records, err := RecordsFromRows(rows, models.TaskCitation)
		require.NoError(t, err)
		require.Equal(t, "primary", records[0].ModelOutput)
		require.Equal(t, "secondary", records[1].ModelOutput)
		require.Equal(t, "tertiary", records[2].ModelOutput)
	})

	t.Run("missing ids default to row numbers", func(t *testing.T) {
		rows := []Row{{"answer": "x"}}

		records, err := RecordsFromRows(rows, models.TaskCitation)
		require.NoError(t, err)
		require.Equal(t, "row-1", records[0].ID)
	})
}

func TestLoad(t *testing.T) {
	t.Run("dispatches on extension", func(t *testing.T) {
		jsonl := writeFile(t, "batch.jsonl", `{"id":"a","model_output":"x","gold":{}}
`)
		records, err := Load(jsonl, models.TaskCitation, nil)
		require.NoError(t, err)
		require.Len(t, records, 1)

		csv := writeFile(t, "batch.csv", "id,answer\nr1,x\n")
		records, err = Load(csv, models.TaskCitation, nil)
		require.NoError(t, err)
		require.Len(t, records, 1)
	})

	t.Run("rejects unknown extensions", func(t *testing.T) {
		_, err := Load("batch.parquet", models.TaskCitation, nil)
		require.ErrorContains(t, err, "unsupported batch format")
	})

	t.Run("csv loading applies the structured parser", func(t *testing.T) {
		path := writeFile(t, "batch.csv", "id,answer,gold_answer_text\nr1,raw,gold\n")

		parse := func(raw string) *models.StructuredAnswer {
			return &models.StructuredAnswer{Answer: raw, HasAnswer: true}
		}

		records, err := Load(path, models.TaskUncertainty, parse)
		require.NoError(t, err)
		require.Equal(t, "gold", records[0].Gold.Answer)
		require.Equal(t, "raw", records[0].Structured.Answer)
	})
}
