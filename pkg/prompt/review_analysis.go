package prompt

import (
	"fmt"
	"strings"

	"github.com/reviewloop/engine/pkg/models"
)

// Meaningful and accuracy thresholds the prompt text surfaces to the model.
// The engine itself never gates on these; it uses the model's own
// review_sufficient verdict.
const (
	MeaningfulScore = 0.6
	AccuracyScore   = 0.7
)

// ReviewAnalysis builds the review_analysis prompt: line-numbered code,
// ground-truth defects, the learner's raw review text, and the thresholds.
func ReviewAnalysis(locale models.Locale, code string, manifest []models.Defect, reviewText string) string {
	var b strings.Builder
	b.WriteString(localeInstruction(locale))
	b.WriteString("Grade a learner's code review against the ground-truth defect list.\n\n")
	b.WriteString(Number(code))
	b.WriteString("\n\nGround-truth defects:\n")
	b.WriteString(defectLines(manifest, locale))
	fmt.Fprintf(&b, "\nMeaningful-identification threshold: %.1f. Accuracy threshold: %.1f.\n\n", MeaningfulScore, AccuracyScore)
	b.WriteString("Learner review:\n")
	b.WriteString(reviewText)
	b.WriteString("\n\nRespond with a single JSON object with exactly these keys:\n")
	b.WriteString(`{"identified_problems": [{"problem": string, "justification": string}], ` +
		`"missed_problems": [{"problem": string, "hint": string}], ` +
		`"identified_count": int, "total_problems": int, "identified_percentage": float, ` +
		`"review_sufficient": bool}` + "\n")
	return b.String()
}
