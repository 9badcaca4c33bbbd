package models

import "time"

// MetricResult is one named sub-metric: the raw ratio it was computed
// from and the ordinal score the rubric mapped it to.
type MetricResult struct {
	Name     string         `json:"name"`
	Ratio    float64        `json:"raw_ratio"`
	Score    int            `json:"score"`
	ScaleMax int            `json:"scale_max"`
	Eligible int            `json:"eligible"`
	Details  map[string]any `json:"details,omitempty"`
}

// Normalized maps the ordinal score to [0,1] by dividing by the metric's
// own scale maximum. Binary scales pass through unchanged.
func (m MetricResult) Normalized() float64 {
	if m.ScaleMax <= 0 {
		return 0.0
	}
	return float64(m.Score) / float64(m.ScaleMax)
}

// ModelScoreReport aggregates all metric results for one (model, task)
// pair. Overall is a convex combination of the normalized scores; Pass is
// an independent gate over the raw ordinals. The two are deliberately not
// derived from each other: a high Overall can still fail the gate.
type ModelScoreReport struct {
	RunID     string         `json:"run_id,omitempty"`
	Model     string         `json:"model"`
	Task      Task           `json:"task"`
	Timestamp time.Time      `json:"timestamp"`
	Metrics   []MetricResult `json:"metrics"`
	Overall   float64        `json:"overall"`
	Pass      bool           `json:"pass"`
	Records   int            `json:"records"`
}

// Metric returns the named metric result, or nil when absent.
func (r *ModelScoreReport) Metric(name string) *MetricResult {
	for i := range r.Metrics {
		if r.Metrics[i].Name == name {
			return &r.Metrics[i]
		}
	}
	return nil
}

// SuiteReport holds every ModelScoreReport produced by one scoring run.
type SuiteReport struct {
	RunID     string             `json:"run_id"`
	SuiteName string             `json:"suite_name"`
	Timestamp time.Time          `json:"timestamp"`
	Reports   []ModelScoreReport `json:"reports"`
}
