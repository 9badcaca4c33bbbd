package rubric

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/attribench/attribench/internal/models"
)

func TestTableScore(t *testing.T) {
	ascending := Table{
		Direction: Ascending,
		ScaleMax:  3,
		Steps: []Step{
			{Threshold: 0.70, Score: 3},
			{Threshold: 0.50, Score: 2},
			{Threshold: 0.40, Score: 1},
		},
	}

	descending := Table{
		Direction: Descending,
		ScaleMax:  3,
		Steps: []Step{
			{Threshold: 0.10, Score: 3},
			{Threshold: 0.25, Score: 2},
			{Threshold: 0.40, Score: 1},
		},
	}

	t.Run("ascending thresholds are inclusive", func(t *testing.T) {
		cases := []struct {
			ratio float64
			want  int
		}{
			{1.0, 3},
			{0.70, 3},
			{0.699, 2},
			{0.50, 2},
			{0.40, 1},
			{0.399, 0},
			{0.0, 0},
		}
		for _, tc := range cases {
			require.Equal(t, tc.want, ascending.Score(tc.ratio), "ratio %v", tc.ratio)
		}
	})

	t.Run("descending thresholds are inclusive", func(t *testing.T) {
		cases := []struct {
			ratio float64
			want  int
		}{
			{0.0, 3},
			{0.10, 3},
			{0.101, 2},
			{0.25, 2},
			{0.40, 1},
			{0.401, 0},
			{1.0, 0},
		}
		for _, tc := range cases {
			require.Equal(t, tc.want, descending.Score(tc.ratio), "ratio %v", tc.ratio)
		}
	})

	t.Run("ascending is monotone", func(t *testing.T) {
		prev := -1
		for ratio := 0.0; ratio <= 1.0; ratio += 0.01 {
			score := ascending.Score(ratio)
			require.GreaterOrEqual(t, score, prev)
			prev = score
		}
	})

	t.Run("descending is antitone", func(t *testing.T) {
		prev := 4
		for ratio := 0.0; ratio <= 1.0; ratio += 0.01 {
			score := descending.Score(ratio)
			require.LessOrEqual(t, score, prev)
			prev = score
		}
	})
}

func TestBinaryTables(t *testing.T) {
	t.Run("binary at least", func(t *testing.T) {
		tbl := Binary(0.80)
		require.Equal(t, 1, tbl.ScaleMax)
		require.Equal(t, 1, tbl.Score(0.80))
		require.Equal(t, 1, tbl.Score(0.95))
		require.Equal(t, 0, tbl.Score(0.799))
	})

	t.Run("binary at most", func(t *testing.T) {
		tbl := BinaryAtMost(0.10)
		require.Equal(t, 1, tbl.ScaleMax)
		require.Equal(t, 1, tbl.Score(0.10))
		require.Equal(t, 1, tbl.Score(0.0))
		require.Equal(t, 0, tbl.Score(0.101))
	})
}

func TestWeighting(t *testing.T) {
	results := []models.MetricResult{
		{Name: "a", Score: 3, ScaleMax: 3},
		{Name: "b", Score: 1, ScaleMax: 2},
		{Name: "c", Score: 0, ScaleMax: 1},
	}

	t.Run("overall is the weighted normalized sum", func(t *testing.T) {
		w := Weighting{"a": 0.5, "b": 0.3, "c": 0.2}
		// 0.5*1.0 + 0.3*0.5 + 0.2*0.0
		require.InDelta(t, 0.65, w.Overall(results), 1e-9)
	})

	t.Run("unweighted metrics contribute nothing", func(t *testing.T) {
		w := Weighting{"a": 1.0}
		require.InDelta(t, 1.0, w.Overall(results), 1e-9)
	})

	t.Run("perfect scores give overall one", func(t *testing.T) {
		perfect := []models.MetricResult{
			{Name: "a", Score: 3, ScaleMax: 3},
			{Name: "b", Score: 2, ScaleMax: 2},
		}
		w := Weighting{"a": 0.6, "b": 0.4}
		require.InDelta(t, 1.0, w.Overall(perfect), 1e-9)
	})

	t.Run("validate accepts thirds", func(t *testing.T) {
		w := Weighting{"a": 1.0 / 3, "b": 1.0 / 3, "c": 1.0 / 3}
		require.NoError(t, w.Validate())
	})

	t.Run("validate rejects short sums", func(t *testing.T) {
		require.Error(t, Weighting{"a": 0.5, "b": 0.3}.Validate())
	})

	t.Run("validate rejects negative weights", func(t *testing.T) {
		require.Error(t, Weighting{"a": 1.5, "b": -0.5}.Validate())
	})
}

func TestGate(t *testing.T) {
	results := []models.MetricResult{
		{Name: "a", Score: 2, ScaleMax: 3},
		{Name: "b", Score: 1, ScaleMax: 1},
	}

	t.Run("passes when every floor is met", func(t *testing.T) {
		require.True(t, Gate{"a": 2, "b": 1}.Pass(results))
	})

	t.Run("fails when any metric is below its floor", func(t *testing.T) {
		require.False(t, Gate{"a": 3, "b": 1}.Pass(results))
	})

	t.Run("missing gated metric fails", func(t *testing.T) {
		require.False(t, Gate{"a": 1, "missing": 1}.Pass(results))
	})

	t.Run("empty gate always passes", func(t *testing.T) {
		require.True(t, Gate{}.Pass(results))
	})

	t.Run("gate ignores the overall", func(t *testing.T) {
		// High weighted overall with one gated metric at zero still fails.
		lopsided := []models.MetricResult{
			{Name: "a", Score: 3, ScaleMax: 3},
			{Name: "b", Score: 0, ScaleMax: 1},
		}
		require.False(t, Gate{"a": 1, "b": 1}.Pass(lopsided))
	})
}

func TestOverallAndPassAreIndependent(t *testing.T) {
	// A perfect overall does not imply a pass: the gate checks raw
	// ordinals against floors the weighting never sees.
	results := []models.MetricResult{
		{Name: "weighted", Score: 3, ScaleMax: 3},
		{Name: "gated_only", Score: 0, ScaleMax: 1},
	}

	w := Weighting{"weighted": 1.0}
	g := Gate{"weighted": 3, "gated_only": 1}

	require.InDelta(t, 1.0, w.Overall(results), 1e-9)
	require.False(t, g.Pass(results))
}
