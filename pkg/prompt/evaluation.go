package prompt

import (
	"fmt"
	"strings"

	"github.com/reviewloop/engine/pkg/models"
)

// Evaluation builds the evaluation prompt: line-numbered code plus the
// expected defect list, demanding a JSON verdict.
func Evaluation(locale models.Locale, annotatedCode string, manifest []models.Defect) string {
	var b strings.Builder
	b.WriteString(localeInstruction(locale))
	b.WriteString("Verify whether the following code contains every defect listed below.\n\n")
	b.WriteString(Number(annotatedCode))
	b.WriteString("\n\nExpected defects:\n")
	b.WriteString(defectLines(manifest, locale))
	fmt.Fprintf(&b, "\nExpected defect count: %d.\n\n", len(manifest))
	b.WriteString("Respond with a single JSON object with exactly these keys:\n")
	b.WriteString(`{"found_errors": [string], "missing_errors": [string], "valid": bool, "feedback": string}` + "\n")
	codes := make([]string, len(manifest))
	for i, d := range manifest {
		codes[i] = d.Code
	}
	fmt.Fprintf(&b, "found_errors and missing_errors name defects by their code; the codes of ERROR 1..%d above, in order, are: %s.\n", len(manifest), strings.Join(codes, ", "))
	return b.String()
}
