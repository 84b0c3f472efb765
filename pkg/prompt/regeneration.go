package prompt

import (
	"fmt"
	"strings"

	"github.com/reviewloop/engine/pkg/models"
)

// Regeneration builds the regeneration prompt: retain found defects
// verbatim, inject the missing ones, against the full requested list.
func Regeneration(locale models.Locale, currentCode string, domain string, missing []models.Defect, foundCodes []string, fullManifest []models.Defect) string {
	var b strings.Builder
	b.WriteString(localeInstruction(locale))
	fmt.Fprintf(&b, "The following Java program for the domain \"%s\" was verified to be missing some requested defects.\n\n", domain)
	b.WriteString("Current code:\n")
	b.WriteString(currentCode)
	b.WriteString("\n\n")

	if len(foundCodes) > 0 {
		b.WriteString("Defects already present and verified — keep these sites and their marker comments unchanged:\n")
		for _, code := range foundCodes {
			b.WriteString("- " + code + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Defects still missing — inject these into the code:\n")
	b.WriteString(defectLines(missing, locale))
	b.WriteString("\nFull requested defect list, for reference:\n")
	b.WriteString(defectLines(fullManifest, locale))
	b.WriteString("\nRespond with exactly two fenced code blocks, annotated then clean, as before.\n")
	return b.String()
}
