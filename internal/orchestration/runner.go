// Package orchestration runs the scoring pipelines over every
// (model, task) pair in a suite.
package orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/attribench/attribench/internal/config"
	"github.com/attribench/attribench/internal/dataset"
	"github.com/attribench/attribench/internal/models"
	"github.com/attribench/attribench/internal/providers"
	"github.com/attribench/attribench/internal/scoring"
)

// EventType identifies a progress event.
type EventType string

const (
	EventSuiteStart    EventType = "suite_start"
	EventSuiteComplete EventType = "suite_complete"
	EventPairStart     EventType = "pair_start"
	EventPairComplete  EventType = "pair_complete"
)

// ProgressEvent reports runner progress to listeners.
type ProgressEvent struct {
	EventType  EventType
	Model      string
	Task       models.Task
	PairNum    int
	TotalPairs int
	Pass       bool
	Overall    float64
	DurationMs int64
}

// ProgressListener receives progress updates.
type ProgressListener func(event ProgressEvent)

// Runner orchestrates scoring for every (model, task) pair in a suite.
// Each pair is scored independently from its own batch: no state is
// shared between model evaluations, so pairs can run in parallel.
type Runner struct {
	cfg  *config.ScoringConfig
	deps scoring.Collaborators

	progressMu sync.Mutex
	listeners  []ProgressListener
}

// NewRunner creates a runner with the injected collaborators.
func NewRunner(cfg *config.ScoringConfig, deps scoring.Collaborators) *Runner {
	return &Runner{cfg: cfg, deps: deps}
}

// OnProgress registers a progress listener.
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// pair is one (model, task) scoring unit.
type pair struct {
	model string
	task  *models.TaskSpec
}

// Run scores every (model, task) pair and returns the suite report.
// Report order follows the suite spec: tasks in listed order, models in
// listed order within each task.
func (r *Runner) Run(ctx context.Context) (*models.SuiteReport, error) {
	spec := r.cfg.Spec()
	runID := uuid.NewString()

	var pairs []pair
	for i := range spec.Tasks {
		for _, model := range spec.Models {
			pairs = append(pairs, pair{model: model, task: &spec.Tasks[i]})
		}
	}

	r.notifyProgress(ProgressEvent{
		EventType:  EventSuiteStart,
		TotalPairs: len(pairs),
	})
	startTime := time.Now()

	scored := make([]*models.ModelScoreReport, len(pairs))

	if spec.Config.Concurrent {
		if err := r.runConcurrent(ctx, pairs, scored); err != nil {
			return nil, err
		}
	} else {
		if err := r.runSequential(ctx, pairs, scored); err != nil {
			return nil, err
		}
	}

	// Failed pairs leave a nil slot when fail_fast is off.
	var reports []models.ModelScoreReport
	for _, report := range scored {
		if report == nil {
			continue
		}
		report.RunID = runID
		reports = append(reports, *report)
	}

	r.notifyProgress(ProgressEvent{
		EventType:  EventSuiteComplete,
		TotalPairs: len(pairs),
		DurationMs: time.Since(startTime).Milliseconds(),
	})

	return &models.SuiteReport{
		RunID:     runID,
		SuiteName: spec.Name,
		Timestamp: startTime.UTC(),
		Reports:   reports,
	}, nil
}

func (r *Runner) runSequential(ctx context.Context, pairs []pair, scored []*models.ModelScoreReport) error {
	for i, p := range pairs {
		report, err := r.scorePair(ctx, p, i+1, len(pairs))
		if err != nil {
			if r.cfg.Spec().Config.StopOnErr {
				return err
			}
			slog.Error("pair failed, continuing", "model", p.model, "task", p.task.Task, "error", err)
			continue
		}
		scored[i] = report
	}
	return nil
}

func (r *Runner) runConcurrent(ctx context.Context, pairs []pair, scored []*models.ModelScoreReport) error {
	workers := r.cfg.Spec().Config.Workers
	if workers <= 0 {
		workers = 4
	}
	stopOnErr := r.cfg.Spec().Config.StopOnErr

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range pairs {
		g.Go(func() error {
			report, err := r.scorePair(gctx, p, i+1, len(pairs))
			if err != nil {
				if stopOnErr {
					return err
				}
				slog.Error("pair failed, continuing", "model", p.model, "task", p.task.Task, "error", err)
				return nil
			}
			scored[i] = report
			return nil
		})
	}

	return g.Wait()
}

// scorePair loads one batch and runs the task's computer over it.
func (r *Runner) scorePair(ctx context.Context, p pair, num, total int) (*models.ModelScoreReport, error) {
	r.notifyProgress(ProgressEvent{
		EventType:  EventPairStart,
		Model:      p.model,
		Task:       p.task.Task,
		PairNum:    num,
		TotalPairs: total,
	})
	start := time.Now()

	batchPath, err := p.task.ResponsesFile(p.model)
	if err != nil {
		return nil, err
	}
	batchPath = models.ResolveResponsesPath(r.cfg.SuiteDir(), batchPath)

	var parse dataset.StructuredParser
	if p.task.Task == models.TaskUncertainty {
		parse = providers.ParseStructuredAnswer
	}

	records, err := dataset.Load(batchPath, p.task.Task, parse)
	if err != nil {
		return nil, fmt.Errorf("loading batch for %s/%s: %w", p.model, p.task.Task, err)
	}

	computer, err := scoring.Create(p.task.Task, p.task.Parameters, r.deps)
	if err != nil {
		return nil, fmt.Errorf("building %s computer: %w", p.task.Task, err)
	}

	report, err := computer.Compute(ctx, records)
	if err != nil {
		return nil, fmt.Errorf("scoring %s/%s: %w", p.model, p.task.Task, err)
	}
	report.Model = p.model

	r.notifyProgress(ProgressEvent{
		EventType:  EventPairComplete,
		Model:      p.model,
		Task:       p.task.Task,
		PairNum:    num,
		TotalPairs: total,
		Pass:       report.Pass,
		Overall:    report.Overall,
		DurationMs: time.Since(start).Milliseconds(),
	})

	return report, nil
}
