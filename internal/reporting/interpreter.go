// Package reporting renders suite reports for humans and for CI: a
// plain-language summary, a per-model comparison table, JSON results,
// and JUnit XML.
package reporting

import (
	"fmt"
	"sort"
	"strings"

	"github.com/attribench/attribench/internal/models"
)

// InterpretScore returns a plain-language label for a normalized score (0–1).
func InterpretScore(score float64) string {
	pct := score * 100
	switch {
	case pct > 90:
		return "Excellent (>90%)"
	case pct >= 70:
		return "Good (70-90%)"
	case pct >= 50:
		return "Needs Work (50-70%)"
	default:
		return "Poor (<50%)"
	}
}

// InterpretGate explains the pass gate outcome relative to the overall
// score. The two can disagree: the gate checks every metric's ordinal
// against its own floor, not the weighted average.
func InterpretGate(pass bool, overall float64) string {
	if pass {
		return "Passed: every metric cleared its gate."
	}
	if overall >= 0.7 {
		return "Failed the gate despite a strong overall score — at least one metric fell below its required floor."
	}
	return "Failed: one or more metrics fell below their required floor."
}

// FormatModelReport produces a plain-language report for one (model,
// task) pair.
func FormatModelReport(report *models.ModelScoreReport) string {
	var b strings.Builder

	icon := "✓"
	if !report.Pass {
		icon = "✗"
	}
	b.WriteString(fmt.Sprintf("%s %s / %s\n", icon, report.Model, report.Task))
	b.WriteString(fmt.Sprintf("  Overall: %.3f — %s\n", report.Overall, InterpretScore(report.Overall)))
	b.WriteString(fmt.Sprintf("  %s\n", InterpretGate(report.Pass, report.Overall)))
	b.WriteString(fmt.Sprintf("  Records: %d\n", report.Records))

	for _, m := range report.Metrics {
		b.WriteString(fmt.Sprintf("    %-32s score %d/%d  (ratio %.3f, n=%d)\n",
			m.Name, m.Score, m.ScaleMax, m.Ratio, m.Eligible))
	}

	return b.String()
}

// FormatSummaryReport produces the full plain-language suite summary.
func FormatSummaryReport(suite *models.SuiteReport) string {
	var b strings.Builder

	b.WriteString("=== Interpretation ===\n\n")
	b.WriteString(fmt.Sprintf("Suite: %s (run %s)\n\n", suite.SuiteName, suite.RunID))

	for i := range suite.Reports {
		b.WriteString(FormatModelReport(&suite.Reports[i]))
		b.WriteString("\n")
	}

	if table := FormatComparisonTable(suite); table != "" {
		b.WriteString(table)
	}

	return b.String()
}

// FormatComparisonTable renders a per-task table comparing every model's
// overall score and gate outcome. Returns "" when the suite has fewer
// than two models for every task.
func FormatComparisonTable(suite *models.SuiteReport) string {
	byTask := map[models.Task][]*models.ModelScoreReport{}
	var taskOrder []models.Task
	for i := range suite.Reports {
		r := &suite.Reports[i]
		if _, ok := byTask[r.Task]; !ok {
			taskOrder = append(taskOrder, r.Task)
		}
		byTask[r.Task] = append(byTask[r.Task], r)
	}

	multi := false
	for _, reports := range byTask {
		if len(reports) > 1 {
			multi = true
			break
		}
	}
	if !multi {
		return ""
	}

	var b strings.Builder
	b.WriteString("=== Model Comparison ===\n\n")

	for _, task := range taskOrder {
		reports := byTask[task]
		sort.SliceStable(reports, func(i, j int) bool {
			return reports[i].Overall > reports[j].Overall
		})

		b.WriteString(fmt.Sprintf("%s:\n", task))
		b.WriteString(fmt.Sprintf("  %-32s %8s  %s\n", "model", "overall", "gate"))
		for _, r := range reports {
			gate := "pass"
			if !r.Pass {
				gate = "FAIL"
			}
			b.WriteString(fmt.Sprintf("  %-32s %8.3f  %s\n", r.Model, r.Overall, gate))
		}
		b.WriteString("\n")
	}

	return b.String()
}
