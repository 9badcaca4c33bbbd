package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetricResultNormalized(t *testing.T) {
	require.Equal(t, 1.0, MetricResult{Score: 3, ScaleMax: 3}.Normalized())
	require.InDelta(t, 2.0/3.0, MetricResult{Score: 2, ScaleMax: 3}.Normalized(), 1e-9)
	require.Equal(t, 0.0, MetricResult{Score: 0, ScaleMax: 1}.Normalized())
	require.Equal(t, 1.0, MetricResult{Score: 1, ScaleMax: 1}.Normalized())
	require.Equal(t, 0.0, MetricResult{Score: 1, ScaleMax: 0}.Normalized())
}

func TestModelScoreReportMetric(t *testing.T) {
	report := &ModelScoreReport{
		Metrics: []MetricResult{
			{Name: "a", Score: 1},
			{Name: "b", Score: 2},
		},
	}

	m := report.Metric("b")
	require.NotNil(t, m)
	require.Equal(t, 2, m.Score)

	require.Nil(t, report.Metric("missing"))
}

func TestConfidenceOrDefault(t *testing.T) {
	var s *StructuredAnswer
	require.Equal(t, 1.0, s.ConfidenceOrDefault(1.0))

	s = &StructuredAnswer{}
	require.Equal(t, 0.0, s.ConfidenceOrDefault(0.0))

	s = &StructuredAnswer{Confidence: 0.4, HasConfidence: true}
	require.Equal(t, 0.4, s.ConfidenceOrDefault(1.0))
}
