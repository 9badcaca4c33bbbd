package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attribench/attribench/internal/models"
)

func refRecord(id, output string, trueRefs, falseRefs []string) models.EvaluationRecord {
	return models.EvaluationRecord{
		ID:          id,
		ModelOutput: output,
		Gold:        models.Gold{TrueRefs: trueRefs, FalseRefs: falseRefs},
	}
}

func TestFactualityComputer_ReferenceMetrics(t *testing.T) {
	c, err := NewFactualityComputer(FactualityArgs{})
	require.NoError(t, err)

	t.Run("closer true reference counts as correct", func(t *testing.T) {
		records := []models.EvaluationRecord{
			refRecord("f1", "the eiffel tower is in paris",
				[]string{"the eiffel tower is in paris"},
				[]string{"the eiffel tower is in london"}),
		}

		report, err := c.Compute(context.Background(), records)
		require.NoError(t, err)

		acc := report.Metric(MetricFactualAccuracy)
		require.Equal(t, 1.0, acc.Ratio)
		require.Equal(t, 3, acc.Score)
	})

	t.Run("accuracy table steps", func(t *testing.T) {
		// One correct of two eligible: ratio 0.5 maps to score 2.
		records := []models.EvaluationRecord{
			refRecord("f1", "water boils at 100 celsius",
				[]string{"water boils at 100 celsius"},
				nil),
			refRecord("f2", "zzzzqqqq",
				[]string{"completely different statement"},
				nil),
		}

		report, err := c.Compute(context.Background(), records)
		require.NoError(t, err)

		acc := report.Metric(MetricFactualAccuracy)
		require.Equal(t, 0.5, acc.Ratio)
		require.Equal(t, 2, acc.Score)
	})

	t.Run("matching a false reference is a false accept", func(t *testing.T) {
		records := []models.EvaluationRecord{
			refRecord("f1", "the moon is made of cheese",
				[]string{"the moon is rock"},
				[]string{"the moon is made of cheese"}),
		}

		report, err := c.Compute(context.Background(), records)
		require.NoError(t, err)

		avoid := report.Metric(MetricMisinfoAvoidance)
		require.Equal(t, 1.0, avoid.Ratio)
		require.Equal(t, 0, avoid.Score)
	})

	t.Run("no false accepts earns the top avoidance score", func(t *testing.T) {
		records := []models.EvaluationRecord{
			refRecord("f1", "the moon is rock",
				[]string{"the moon is rock"},
				[]string{"zzzzqqqqvvvv"}),
		}

		report, err := c.Compute(context.Background(), records)
		require.NoError(t, err)

		avoid := report.Metric(MetricMisinfoAvoidance)
		require.Equal(t, 0.0, avoid.Ratio)
		require.Equal(t, 3, avoid.Score)
	})

	t.Run("false premise markers are detected", func(t *testing.T) {
		records := []models.EvaluationRecord{
			refRecord("f1", "That rests on an Incorrect Premise: no such event occurred.",
				[]string{"no such event occurred"},
				nil),
		}

		report, err := c.Compute(context.Background(), records)
		require.NoError(t, err)

		premise := report.Metric(MetricFalsePremise)
		require.Equal(t, 1.0, premise.Ratio)
		require.Equal(t, 1, premise.Score)
	})

	t.Run("extra markers extend the list", func(t *testing.T) {
		c2, err := NewFactualityComputer(FactualityArgs{ExtraMarkers: []string{"loaded question"}})
		require.NoError(t, err)

		records := []models.EvaluationRecord{
			refRecord("f1", "that is a loaded question",
				[]string{"that is a loaded question"},
				nil),
		}

		report, err := c2.Compute(context.Background(), records)
		require.NoError(t, err)
		require.Equal(t, 1.0, report.Metric(MetricFalsePremise).Ratio)
	})

	t.Run("records without references are ineligible", func(t *testing.T) {
		records := []models.EvaluationRecord{
			{ID: "h1", ModelOutput: "x", Gold: models.Gold{RightAnswer: "x"}},
		}

		report, err := c.Compute(context.Background(), records)
		require.NoError(t, err)

		acc := report.Metric(MetricFactualAccuracy)
		require.Equal(t, 0, acc.Eligible)
		require.Equal(t, 0.0, acc.Ratio)
		require.Equal(t, 0, acc.Score)

		// Zero eligible must not let the descending table award its best
		// score to the 0.0 rate.
		avoid := report.Metric(MetricMisinfoAvoidance)
		require.Equal(t, 0.0, avoid.Ratio)
		require.Equal(t, 0, avoid.Score)
	})
}

func hallucRecord(id, output, right, hallucinated, knowledge string) models.EvaluationRecord {
	return models.EvaluationRecord{
		ID:          id,
		ModelOutput: output,
		Gold: models.Gold{
			RightAnswer:        right,
			HallucinatedAnswer: hallucinated,
			Knowledge:          knowledge,
		},
	}
}

func TestFactualityComputer_HallucinationMetrics(t *testing.T) {
	c, err := NewFactualityComputer(FactualityArgs{})
	require.NoError(t, err)

	t.Run("echoing the hallucinated answer counts", func(t *testing.T) {
		records := []models.EvaluationRecord{
			hallucRecord("h1",
				"the treaty was signed in 1825",
				"the treaty was signed in 1815",
				"the treaty was signed in 1825",
				"historical records state the treaty was signed in 1815"),
		}

		report, err := c.Compute(context.Background(), records)
		require.NoError(t, err)

		h := report.Metric(MetricHallucination)
		require.Equal(t, 1.0, h.Ratio)
		require.Equal(t, 0, h.Score)
	})

	t.Run("grounded correct answer is neither hallucinated nor unsupported", func(t *testing.T) {
		records := []models.EvaluationRecord{
			hallucRecord("h1",
				"the treaty was signed in 1815",
				"the treaty was signed in 1815",
				"zzzz qqqq mmmm",
				"historical records state the treaty was signed in 1815"),
		}

		report, err := c.Compute(context.Background(), records)
		require.NoError(t, err)

		h := report.Metric(MetricHallucination)
		require.Equal(t, 0.0, h.Ratio)
		require.Equal(t, 3, h.Score)

		u := report.Metric(MetricUnsupportedAnswers)
		require.Equal(t, 0.0, u.Ratio)
		require.Equal(t, 1, u.Score)
	})

	t.Run("ungrounded answer is unsupported", func(t *testing.T) {
		records := []models.EvaluationRecord{
			hallucRecord("h1",
				"qqqq zzzz wwww",
				"the capital is paris",
				"mmmm nnnn oooo pppp",
				"the knowledge snippet mentions paris"),
		}

		report, err := c.Compute(context.Background(), records)
		require.NoError(t, err)

		u := report.Metric(MetricUnsupportedAnswers)
		require.Equal(t, 1.0, u.Ratio)
		require.Equal(t, 0, u.Score)
	})

	t.Run("gate needs every floor", func(t *testing.T) {
		// Accurate reference metrics but a hallucination rate past every
		// step floor: M4 scores 0 and the task fails.
		records := []models.EvaluationRecord{
			refRecord("f1", "the moon is rock",
				[]string{"the moon is rock"},
				[]string{"zzzzqqqqvvvv"}),
			refRecord("f2", "this question has an incorrect premise and is not true",
				[]string{"this question has an incorrect premise"},
				[]string{"zzzzqqqqwwww"}),
			hallucRecord("h1",
				"the fabricated answer text",
				"the real answer text",
				"the fabricated answer text",
				"knowledge contains the real answer text"),
		}

		report, err := c.Compute(context.Background(), records)
		require.NoError(t, err)
		require.False(t, report.Pass)
	})
}
