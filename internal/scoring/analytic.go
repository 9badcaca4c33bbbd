package scoring

import (
	"context"
	"fmt"

	"github.com/attribench/attribench/internal/models"
	"github.com/attribench/attribench/internal/rubric"
	"github.com/attribench/attribench/internal/textnorm"
)

// Metric names for the analytic-operations task.
const (
	MetricMathAccuracy        = "math_accuracy"
	MetricTranslationAdequacy = "translation_adequacy"
	MetricFaithfulness        = "summarization_faithfulness"
)

// Pass thresholds for the analytic task, applied to raw ratios.
const (
	mathAccuracyPassThreshold = 0.80
	adequacyPassThreshold     = 0.70
	faithfulnessPassThreshold = 0.80

	// faithfulOverlapThreshold is the per-record semantic-overlap floor
	// above which a summary counts as faithful.
	faithfulOverlapThreshold = 0.80
)

// AnalyticArgs holds suite-level overrides for the analytic computer.
type AnalyticArgs struct {
	// FaithfulOverlap overrides the per-record overlap threshold.
	FaithfulOverlap float64 `mapstructure:"faithful_overlap"`
}

// analyticComputer scores math exact-match accuracy, translation adequacy,
// and summarization faithfulness over one mixed-category batch.
type analyticComputer struct {
	faithfulOverlap float64
	quality         QualityScorer
	faithfulness    FaithfulnessScorer
}

// NewAnalyticComputer creates the analytic-operations computer. The
// quality and faithfulness scorers are required collaborators: adequacy
// and overlap scalars come from outside the scoring engine.
func NewAnalyticComputer(args AnalyticArgs, quality QualityScorer, faithfulness FaithfulnessScorer) (*analyticComputer, error) {
	if quality == nil {
		return nil, fmt.Errorf("analytic computer requires a quality scorer")
	}
	if faithfulness == nil {
		return nil, fmt.Errorf("analytic computer requires a faithfulness scorer")
	}

	overlap := args.FaithfulOverlap
	if overlap <= 0 {
		overlap = faithfulOverlapThreshold
	}

	return &analyticComputer{
		faithfulOverlap: overlap,
		quality:         quality,
		faithfulness:    faithfulness,
	}, nil
}

func (c *analyticComputer) Task() models.Task { return models.TaskAnalytic }

func (c *analyticComputer) Compute(ctx context.Context, records []models.EvaluationRecord) (*models.ModelScoreReport, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}

	metrics := []models.MetricResult{
		c.mathAccuracy(records),
		c.translationAdequacy(ctx, records),
		c.summarizationFaithfulness(ctx, records),
	}

	weights := rubric.Weighting{
		MetricMathAccuracy:        1.0 / 3.0,
		MetricTranslationAdequacy: 1.0 / 3.0,
		MetricFaithfulness:        1.0 / 3.0,
	}
	gate := rubric.Gate{
		MetricMathAccuracy:        1,
		MetricTranslationAdequacy: 1,
		MetricFaithfulness:        1,
	}

	return buildReport(models.TaskAnalytic, metrics, weights, gate, len(records)), nil
}

// mathAccuracy counts cleaned predictions that exactly equal the cleaned
// gold answer.
func (c *analyticComputer) mathAccuracy(records []models.EvaluationRecord) models.MetricResult {
	correct := 0
	eligible := 0

	for _, rec := range records {
		if rec.Category != models.CategoryMath || rec.Gold.Answer == "" {
			continue
		}
		eligible++
		if textnorm.Clean(rec.ModelOutput) == textnorm.Clean(rec.Gold.Answer) {
			correct++
		}
	}

	ratio := ratioOf(correct, eligible)
	table := rubric.Binary(mathAccuracyPassThreshold)
	return models.MetricResult{
		Name:     MetricMathAccuracy,
		Ratio:    ratio,
		Score:    table.Score(ratio),
		ScaleMax: table.ScaleMax,
		Eligible: eligible,
		Details:  map[string]any{"correct": correct},
	}
}

// translationAdequacy averages the collaborator's per-record adequacy
// scalar. Records the scorer cannot evaluate are excluded from the mean
// rather than failing the batch.
func (c *analyticComputer) translationAdequacy(ctx context.Context, records []models.EvaluationRecord) models.MetricResult {
	sum := 0.0
	scored := 0
	scorerErrors := 0

	for _, rec := range records {
		if rec.Category != models.CategoryTranslation {
			continue
		}
		if rec.Gold.SourceText == "" || rec.Gold.Translation == "" {
			continue
		}

		score, err := c.quality.QualityScore(ctx, rec.Gold.SourceText, textnorm.Clean(rec.ModelOutput), rec.Gold.Translation)
		if err != nil {
			scorerErrors++
			continue
		}
		sum += score
		scored++
	}

	ratio := 0.0
	if scored > 0 {
		ratio = sum / float64(scored)
	}

	table := rubric.Binary(adequacyPassThreshold)
	return models.MetricResult{
		Name:     MetricTranslationAdequacy,
		Ratio:    ratio,
		Score:    table.Score(ratio),
		ScaleMax: table.ScaleMax,
		Eligible: scored,
		Details:  map[string]any{"scorer_errors": scorerErrors},
	}
}

// summarizationFaithfulness counts summaries whose semantic overlap with
// the reference meets the per-record threshold.
func (c *analyticComputer) summarizationFaithfulness(ctx context.Context, records []models.EvaluationRecord) models.MetricResult {
	faithful := 0
	eligible := 0
	scorerErrors := 0

	for _, rec := range records {
		if rec.Category != models.CategorySummarization || rec.Gold.Summary == "" {
			continue
		}

		overlap, err := c.faithfulness.OverlapScore(ctx, textnorm.Clean(rec.ModelOutput), textnorm.Clean(rec.Gold.Summary))
		if err != nil {
			scorerErrors++
			continue
		}
		eligible++
		if overlap >= c.faithfulOverlap {
			faithful++
		}
	}

	ratio := ratioOf(faithful, eligible)
	table := rubric.Binary(faithfulnessPassThreshold)
	return models.MetricResult{
		Name:     MetricFaithfulness,
		Ratio:    ratio,
		Score:    table.Score(ratio),
		ScaleMax: table.ScaleMax,
		Eligible: eligible,
		Details:  map[string]any{"faithful": faithful, "scorer_errors": scorerErrors},
	}
}
