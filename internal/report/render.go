package report

import (
	"fmt"
	"strings"

	"medeval/internal/analysis"
	"medeval/internal/merge"
)

// RenderSummary renders a merged run summary as markdown.
func RenderSummary(merged merge.Merged) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Evaluation summary\n\n")
	if merged.RunID != "" {
		fmt.Fprintf(&b, "Run: %s\n\n", merged.RunID)
	}
	fmt.Fprintf(&b, "| Model | Dataset | Accuracy | Correct | Total |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %d | %d |\n",
		merged.Model, merged.Dataset, formatPercent(merged.Accuracy), merged.Correct, merged.Total)
	return b.String()
}

// RenderAttributeAnalysis renders per-level accuracy and agreement tables
// for one perturbation axis.
func RenderAttributeAnalysis(a analysis.AttributeAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Accuracy by %s level\n\n", a.Attribute)
	fmt.Fprintf(&b, "Overall: %s (%d/%d)\n\n", formatPercent(a.TotalAccuracy), a.TotalCorrect, a.TotalCount)

	fmt.Fprintf(&b, "| Level | Accuracy | Correct | Total |\n")
	fmt.Fprintf(&b, "|---|---|---|---|\n")
	for _, stats := range a.Levels {
		fmt.Fprintf(&b, "| %s | %s | %d | %d |\n",
			formatLevel(stats.Level), formatPercent(stats.Accuracy), stats.Correct, stats.Total)
	}

	agreement := a.Agreement
	if agreement.Compared > 0 {
		fmt.Fprintf(&b, "\n## Agreement across levels\n\n")
		fmt.Fprintf(&b, "Full agreement: %s (%d/%d questions)\n\n",
			formatPercent(agreement.OverallRate), agreement.FullAgreement, agreement.Compared)
		fmt.Fprintf(&b, "| Base vs level | Agreement | Agreed | Compared |\n")
		fmt.Fprintf(&b, "|---|---|---|---|\n")
		for _, pair := range agreement.BaseVsOthers {
			fmt.Fprintf(&b, "| %s | %s | %d | %d |\n",
				formatLevel(pair.Level), formatPercent(pair.Rate), pair.Agreed, pair.Compared)
		}
	}
	return b.String()
}

// RenderComparison renders the question-level differences between two
// evaluation runs.
func RenderComparison(c analysis.Comparison) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Run comparison\n\n")
	fmt.Fprintf(&b, "Base questions: %d, other questions: %d\n\n", c.BaseTotal, c.OtherTotal)

	renderDiffs := func(title string, diffs []analysis.Difference) {
		fmt.Fprintf(&b, "## %s\n\n", title)
		if len(diffs) == 0 {
			fmt.Fprintf(&b, "No differences.\n")
			return
		}
		fmt.Fprintf(&b, "| Question | Base | Other |\n")
		fmt.Fprintf(&b, "|---|---|---|\n")
		for _, diff := range diffs {
			id := diff.QuestionID
			if diff.OriginalQuestionID != "" {
				id = fmt.Sprintf("%s (%s)", diff.QuestionID, diff.OriginalQuestionID)
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", id, verdict(diff.BaseCorrect), verdict(diff.OtherCorrect))
		}
	}

	renderDiffs("By question id", c.ByQuestionID)
	fmt.Fprintf(&b, "\n")
	renderDiffs("By original question id", c.ByOriginalID)
	return b.String()
}

func verdict(correct bool) string {
	if correct {
		return "correct"
	}
	return "incorrect"
}
