package prompt

import (
	"fmt"
	"strings"

	"github.com/reviewloop/engine/pkg/models"
)

// Guidance builds the targeted-feedback prompt the Review Grader uses to
// ask the review-role client for iteration guidance after grading a
// learner's review.
func Guidance(locale models.Locale, manifest []models.Defect, reviewText string, analysis models.ReviewAnalysis, iteration, maxIterations int) string {
	var b strings.Builder
	b.WriteString(localeInstruction(locale))
	fmt.Fprintf(&b, "This is review iteration %d of %d.\n\n", iteration, maxIterations)
	b.WriteString("Ground-truth defects:\n")
	b.WriteString(defectLines(manifest, locale))
	fmt.Fprintf(&b, "\nThe learner identified %d of %d problems so far.\n\n", analysis.IdentifiedCount, analysis.TotalProblems)
	b.WriteString("Learner review:\n")
	b.WriteString(reviewText)
	b.WriteString("\n\nWrite targeted guidance, at most 4 sentences, pointing the learner toward the defects they missed without naming them outright.\n")
	return b.String()
}

// TrimSentences keeps at most n sentences of text, splitting on '.', '!',
// and '?'.
func TrimSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	if text == "" || n <= 0 {
		return ""
	}

	var sentences []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			sentences = append(sentences, text[start:i+1])
			start = i + 1
			if len(sentences) == n {
				break
			}
		}
	}
	if len(sentences) < n && start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return strings.TrimSpace(strings.Join(sentences, " "))
}
