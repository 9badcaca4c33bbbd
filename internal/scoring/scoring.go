// Package scoring implements the per-task metric computers. Each computer
// is a pure function of its input batch: every network-bound capability
// (link resolution, adequacy and overlap scoring) is injected through a
// synchronous interface so computers can run against deterministic fakes.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/attribench/attribench/internal/models"
	"github.com/attribench/attribench/internal/rubric"
)

// ErrEmptyBatch is returned when a task is asked to score zero records.
// An empty batch is structurally impossible input, distinct from the
// zero-eligible case inside a single metric (which yields ratio 0.0).
var ErrEmptyBatch = errors.New("scoring: empty record batch")

// Computer scores one batch of records for a single (model, task) pair.
type Computer interface {
	// Task returns the pipeline this computer implements.
	Task() models.Task

	// Compute scores the batch and returns a report with metrics, overall,
	// and pass populated. The runner fills in model identity and run ID.
	Compute(ctx context.Context, records []models.EvaluationRecord) (*models.ModelScoreReport, error)
}

// LinkResolver answers whether an external link resolves. Implementations
// own all retry/timeout policy; an unreachable backend must surface as
// false ("invalid"), never as an error reaching the metric computers.
type LinkResolver interface {
	Resolve(ctx context.Context, url string) bool
}

// QualityScorer produces a per-record adequacy scalar in [0,1] for a
// candidate translation against its source and reference.
type QualityScorer interface {
	QualityScore(ctx context.Context, source, candidate, reference string) (float64, error)
}

// FaithfulnessScorer produces a semantic-overlap scalar in [0,1] between
// a candidate summary and a reference summary.
type FaithfulnessScorer interface {
	OverlapScore(ctx context.Context, candidate, reference string) (float64, error)
}

// Collaborators bundles the external capabilities a computer may need.
type Collaborators struct {
	Resolver     LinkResolver
	Quality      QualityScorer
	Faithfulness FaithfulnessScorer
}

// Create builds the computer for a task, decoding task-specific parameters
// from the suite spec into the computer's typed options.
func Create(task models.Task, params map[string]any, deps Collaborators) (Computer, error) {
	switch task {
	case models.TaskAnalytic:
		var args AnalyticArgs
		if err := mapstructure.Decode(params, &args); err != nil {
			return nil, fmt.Errorf("analytic config: %w", err)
		}
		return NewAnalyticComputer(args, deps.Quality, deps.Faithfulness)
	case models.TaskCitation:
		var args CitationArgs
		if err := mapstructure.Decode(params, &args); err != nil {
			return nil, fmt.Errorf("citation config: %w", err)
		}
		return NewCitationComputer(args, deps.Resolver)
	case models.TaskFactuality:
		var args FactualityArgs
		if err := mapstructure.Decode(params, &args); err != nil {
			return nil, fmt.Errorf("factuality config: %w", err)
		}
		return NewFactualityComputer(args)
	case models.TaskUncertainty:
		var args UncertaintyArgs
		if err := mapstructure.Decode(params, &args); err != nil {
			return nil, fmt.Errorf("uncertainty config: %w", err)
		}
		return NewUncertaintyComputer(args)
	default:
		return nil, fmt.Errorf("'%s' is not a valid task", task)
	}
}

// ratioOf implements the uniform zero-denominator policy: an empty
// eligible set yields 0.0, never NaN.
func ratioOf(count, eligible int) float64 {
	if eligible == 0 {
		return 0.0
	}
	return float64(count) / float64(eligible)
}

// buildReport assembles the task-level report from computed metrics using
// independent weight and gate vectors.
func buildReport(task models.Task, metrics []models.MetricResult, weights rubric.Weighting, gate rubric.Gate, records int) *models.ModelScoreReport {
	return &models.ModelScoreReport{
		Task:      task,
		Timestamp: time.Now().UTC(),
		Metrics:   metrics,
		Overall:   weights.Overall(metrics),
		Pass:      gate.Pass(metrics),
		Records:   records,
	}
}
