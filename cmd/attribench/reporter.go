package main

import (
	"fmt"
	"strings"

	"github.com/attribench/attribench/internal/models"
)

func printSummary(suite *models.SuiteReport) {
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Println(" SCORING RESULTS")
	fmt.Println("=" + strings.Repeat("=", 50))
	fmt.Println()

	passed := 0
	for i := range suite.Reports {
		if suite.Reports[i].Pass {
			passed++
		}
	}

	fmt.Printf("Suite:          %s\n", suite.SuiteName)
	fmt.Printf("Run ID:         %s\n", suite.RunID)
	fmt.Printf("Pairs Scored:   %d\n", len(suite.Reports))
	fmt.Printf("Gates Passed:   %d\n", passed)
	fmt.Printf("Gates Failed:   %d\n", len(suite.Reports)-passed)
	fmt.Println()

	fmt.Println("-" + strings.Repeat("-", 50))
	fmt.Println(" PER-PAIR BREAKDOWN")
	fmt.Println("-" + strings.Repeat("-", 50))
	for i := range suite.Reports {
		r := &suite.Reports[i]
		icon := "✓"
		if !r.Pass {
			icon = "✗"
		}
		fmt.Printf("  %s %s / %s  overall=%.3f  records=%d\n", icon, r.Model, r.Task, r.Overall, r.Records)
		for _, m := range r.Metrics {
			fmt.Printf("      %-32s %d/%d  ratio=%.3f  n=%d\n", m.Name, m.Score, m.ScaleMax, m.Ratio, m.Eligible)
		}
	}
	fmt.Println()
}

// FormatGitHubComment formats a suite report as a markdown comment for
// GitHub PRs.
func FormatGitHubComment(suite *models.SuiteReport) string {
	var b strings.Builder

	b.WriteString("## 🧪 Attribution Benchmark Results\n\n")

	failed := 0
	for i := range suite.Reports {
		if !suite.Reports[i].Pass {
			failed++
		}
	}

	statusIcon := "✅ Passed"
	if failed > 0 {
		statusIcon = "❌ Failed"
	}
	b.WriteString(fmt.Sprintf("**Status:** %s | **Pairs:** %d scored, %d failed\n\n",
		statusIcon, len(suite.Reports), failed))

	b.WriteString("### Pair Results\n\n")
	b.WriteString("| Model | Task | Overall | Gate | Records |\n")
	b.WriteString("|-------|------|---------|------|--------|\n")
	for i := range suite.Reports {
		r := &suite.Reports[i]
		icon := "✅"
		if !r.Pass {
			icon = "❌"
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %.3f | %s | %d |\n",
			r.Model, r.Task, r.Overall, icon, r.Records))
	}
	b.WriteString("\n")

	if failed > 0 {
		b.WriteString("### Failed Pair Details\n\n")
		for i := range suite.Reports {
			r := &suite.Reports[i]
			if r.Pass {
				continue
			}
			b.WriteString(fmt.Sprintf("#### %s / %s\n\n", r.Model, r.Task))
			for _, m := range r.Metrics {
				icon := "✅"
				if m.Score < m.ScaleMax {
					icon = "❌"
				}
				b.WriteString(fmt.Sprintf("- %s **%s**: %d/%d (ratio %.3f, n=%d)\n",
					icon, m.Name, m.Score, m.ScaleMax, m.Ratio, m.Eligible))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("---\n\n")
	b.WriteString(fmt.Sprintf("**Suite:** %s | **Run:** %s\n", suite.SuiteName, suite.RunID))

	return b.String()
}
