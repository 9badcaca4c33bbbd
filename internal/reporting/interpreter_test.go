package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/attribench/attribench/internal/models"
)

func TestInterpretScore(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.95, "Excellent (>90%)"},
		{0.90, "Good (70-90%)"},
		{0.70, "Good (70-90%)"},
		{0.69, "Needs Work (50-70%)"},
		{0.50, "Needs Work (50-70%)"},
		{0.49, "Poor (<50%)"},
		{0.0, "Poor (<50%)"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, InterpretScore(tc.score), "score %v", tc.score)
	}
}

func TestInterpretGate(t *testing.T) {
	require.Contains(t, InterpretGate(true, 0.4), "Passed")
	require.Contains(t, InterpretGate(false, 0.9), "strong overall")
	require.Contains(t, InterpretGate(false, 0.3), "Failed")
}

func sampleSuite() *models.SuiteReport {
	return &models.SuiteReport{
		RunID:     "run-1",
		SuiteName: "nightly",
		Timestamp: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		Reports: []models.ModelScoreReport{
			{
				Model: "alpha", Task: models.TaskCitation,
				Metrics: []models.MetricResult{
					{Name: "citation_presence", Ratio: 0.95, Score: 1, ScaleMax: 1, Eligible: 20},
					{Name: "citation_validity", Ratio: 0.92, Score: 1, ScaleMax: 1, Eligible: 40},
				},
				Overall: 1.0, Pass: true, Records: 20,
			},
			{
				Model: "beta", Task: models.TaskCitation,
				Metrics: []models.MetricResult{
					{Name: "citation_presence", Ratio: 0.40, Score: 0, ScaleMax: 1, Eligible: 20},
					{Name: "citation_validity", Ratio: 0.95, Score: 1, ScaleMax: 1, Eligible: 12},
				},
				Overall: 0.5, Pass: false, Records: 20,
			},
		},
	}
}

func TestFormatSummaryReport(t *testing.T) {
	out := FormatSummaryReport(sampleSuite())

	require.Contains(t, out, "nightly")
	require.Contains(t, out, "run-1")
	require.Contains(t, out, "✓ alpha / citation")
	require.Contains(t, out, "✗ beta / citation")
	require.Contains(t, out, "citation_presence")
	require.Contains(t, out, "Model Comparison")
}

func TestFormatComparisonTable(t *testing.T) {
	t.Run("ranks models by overall", func(t *testing.T) {
		out := FormatComparisonTable(sampleSuite())
		require.Contains(t, out, "citation:")
		require.Less(t, strings.Index(out, "alpha"), strings.Index(out, "beta"))
	})

	t.Run("empty for single-model suites", func(t *testing.T) {
		suite := sampleSuite()
		suite.Reports = suite.Reports[:1]
		require.Empty(t, FormatComparisonTable(suite))
	})
}
