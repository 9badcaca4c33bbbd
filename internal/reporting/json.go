package reporting

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/attribench/attribench/internal/models"
)

// jsonMetric is the per-metric shape persisted to results files.
type jsonMetric struct {
	Score    int     `json:"score"`
	RawRatio float64 `json:"raw_ratio"`
	ScaleMax int     `json:"scale_max"`
	Eligible int     `json:"eligible"`
}

// jsonModelReport flattens a ModelScoreReport into the results-file
// shape: metrics keyed by name rather than listed.
type jsonModelReport struct {
	Model   string                `json:"model"`
	Task    models.Task           `json:"task"`
	Metrics map[string]jsonMetric `json:"metrics"`
	Overall float64               `json:"overall"`
	Pass    bool                  `json:"pass"`
	Records int                   `json:"records"`
}

type jsonSuiteReport struct {
	RunID     string            `json:"run_id"`
	SuiteName string            `json:"suite_name"`
	Timestamp string            `json:"timestamp"`
	Reports   []jsonModelReport `json:"reports"`
}

// MarshalSuiteJSON serializes a suite report to the results-file JSON
// shape.
func MarshalSuiteJSON(suite *models.SuiteReport) ([]byte, error) {
	out := jsonSuiteReport{
		RunID:     suite.RunID,
		SuiteName: suite.SuiteName,
		Timestamp: suite.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}

	for i := range suite.Reports {
		r := &suite.Reports[i]
		metrics := make(map[string]jsonMetric, len(r.Metrics))
		for _, m := range r.Metrics {
			metrics[m.Name] = jsonMetric{
				Score:    m.Score,
				RawRatio: m.Ratio,
				ScaleMax: m.ScaleMax,
				Eligible: m.Eligible,
			}
		}
		out.Reports = append(out.Reports, jsonModelReport{
			Model:   r.Model,
			Task:    r.Task,
			Metrics: metrics,
			Overall: r.Overall,
			Pass:    r.Pass,
			Records: r.Records,
		})
	}

	return json.MarshalIndent(out, "", "  ")
}

// WriteSuiteJSON writes the results-file JSON to path.
func WriteSuiteJSON(suite *models.SuiteReport, path string) error {
	data, err := MarshalSuiteJSON(suite)
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
