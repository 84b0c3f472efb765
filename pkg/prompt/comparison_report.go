package prompt

import (
	"fmt"
	"strings"

	"github.com/reviewloop/engine/pkg/models"
)

// ComparisonReport builds the comparison_report prompt: the evaluation's
// ground-truth defect list, the latest analysis, and a review-history
// summary, demanding the structured report sections.
func ComparisonReport(locale models.Locale, manifest []models.Defect, analysis *models.ReviewAnalysis, reviewHistorySummary string) string {
	var b strings.Builder
	b.WriteString(localeInstruction(locale))
	b.WriteString("Write a final comparative report for a learner's code review session.\n\n")
	b.WriteString("Ground-truth defects:\n")
	b.WriteString(defectLines(manifest, locale))

	if analysis != nil {
		fmt.Fprintf(&b, "\nLatest analysis: identified %d of %d problems (%.1f%% accuracy).\n",
			analysis.IdentifiedCount, analysis.TotalProblems, analysis.Accuracy)
		b.WriteString("Identified:\n")
		for _, p := range analysis.Identified {
			b.WriteString("- " + p.Problem + "\n")
		}
		b.WriteString("Missed:\n")
		for _, p := range analysis.Missed {
			b.WriteString("- " + p.Problem + "\n")
		}
	}

	if reviewHistorySummary != "" {
		b.WriteString("\nReview history:\n")
		b.WriteString(reviewHistorySummary)
		b.WriteString("\n")
	}

	b.WriteString("\nRespond with a single JSON object with exactly these keys:\n")
	b.WriteString(`{"performance_summary": {"identified_count": int, "total_problems": int, ` +
		`"accuracy": float, "iterations_used": int}, "correctly_identified": [string], ` +
		`"missed": [string], "improvement_tips": [string], "language_guidance": [string], ` +
		`"encouragement": string, "detailed_feedback": [string]}` + "\n")
	return b.String()
}
