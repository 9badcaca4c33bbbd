// Package rubric maps raw metric ratios to ordinal scores and combines
// per-metric scores into a weighted overall value and a boolean pass.
//
// Weight vectors and pass-threshold vectors are kept as separate data:
// the overall score and the pass flag are independently computable and
// can disagree by design.
package rubric

import (
	"fmt"

	"github.com/attribench/attribench/internal/models"
)

// Direction states whether higher ratios earn higher scores (ascending,
// "pass at >= X") or lower ratios do (descending, "pass at <= X").
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Step is one threshold in a mapping table.
type Step struct {
	Threshold float64
	Score     int
}

// Table is an ordinal step mapping from a continuous ratio in [0,1] to a
// small-integer score. Steps must be listed best-score first: for an
// ascending table the thresholds decrease down the list, for a descending
// table they increase.
type Table struct {
	Direction Direction
	ScaleMax  int
	Steps     []Step
}

// Score maps a ratio through the table. Ratios matching no step earn 0.
func (t Table) Score(ratio float64) int {
	for _, s := range t.Steps {
		switch t.Direction {
		case Ascending:
			if ratio >= s.Threshold {
				return s.Score
			}
		case Descending:
			if ratio <= s.Threshold {
				return s.Score
			}
		}
	}
	return 0
}

// Binary builds a 0/1 ascending table: 1 when ratio >= threshold.
func Binary(threshold float64) Table {
	return Table{
		Direction: Ascending,
		ScaleMax:  1,
		Steps:     []Step{{Threshold: threshold, Score: 1}},
	}
}

// BinaryAtMost builds a 0/1 descending table: 1 when ratio <= threshold.
func BinaryAtMost(threshold float64) Table {
	return Table{
		Direction: Descending,
		ScaleMax:  1,
		Steps:     []Step{{Threshold: threshold, Score: 1}},
	}
}

// Weighting assigns a fixed weight to each named metric. Weights must sum
// to 1 so the overall stays a convex combination.
type Weighting map[string]float64

// Overall computes the weighted overall score from normalized ordinals.
// Metrics absent from the weighting contribute nothing.
func (w Weighting) Overall(results []models.MetricResult) float64 {
	total := 0.0
	for _, r := range results {
		total += w[r.Name] * r.Normalized()
	}
	return total
}

// Validate checks the weight vector sums to 1 (within tolerance).
func (w Weighting) Validate() error {
	sum := 0.0
	for _, weight := range w {
		if weight < 0 {
			return fmt.Errorf("rubric: negative weight %v", weight)
		}
		sum += weight
	}
	if sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("rubric: weights sum to %v, want 1.0", sum)
	}
	return nil
}

// Gate is the per-metric minimum raw ordinal required for a task-level
// pass. Pass is the AND over every listed metric; the gate never looks
// at the weighted overall.
type Gate map[string]int

// Pass reports whether every gated metric meets its minimum ordinal.
// A gated metric missing from the results fails the gate.
func (g Gate) Pass(results []models.MetricResult) bool {
	byName := make(map[string]int, len(results))
	for _, r := range results {
		byName[r.Name] = r.Score
	}
	for name, min := range g {
		score, ok := byName[name]
		if !ok || score < min {
			return false
		}
	}
	return true
}
