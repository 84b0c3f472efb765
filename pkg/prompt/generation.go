package prompt

import (
	"fmt"
	"strings"

	"github.com/reviewloop/engine/pkg/models"
)

// lengthHints maps a LengthBucket to the structural guidance given to the
// generative model.
var lengthHints = map[models.LengthBucket]string{
	models.LengthShort:  "1 class, 1-2 methods, approximately 15-30 lines of code",
	models.LengthMedium: "1 class, 3-5 methods, approximately 40-80 lines of code",
	models.LengthLong:   "1-2 classes, 4-8 methods, approximately 100-150 lines of code",
}

// CodeGeneration builds the code_generation prompt: produce two fenced
// Java code blocks, an annotated one with "// ERROR N: name" markers and a
// clean one with the markers stripped.
func CodeGeneration(locale models.Locale, length models.LengthBucket, difficulty models.Difficulty, defects []models.Defect, domain string) string {
	hint, ok := lengthHints[length]
	if !ok {
		hint = lengthHints[models.LengthMedium]
	}

	var b strings.Builder
	b.WriteString(localeInstruction(locale))
	fmt.Fprintf(&b, "Write a Java program for the domain \"%s\".\n", domain)
	fmt.Fprintf(&b, "Target size: %s.\n", hint)
	fmt.Fprintf(&b, "Difficulty level: %s.\n\n", difficultyLabel(difficulty))
	b.WriteString("Seed the program with exactly these defects:\n")
	b.WriteString(defectLines(defects, locale))
	fmt.Fprintf(&b, "\nExpected defect count: %d.\n\n", len(defects))
	b.WriteString("Respond with exactly two fenced code blocks.\n")
	b.WriteString("The first block is the annotated variant: mark each defect site with a trailing comment\n")
	b.WriteString("of the exact form `// ERROR N: <defect name>`, numbered in the order listed above.\n")
	b.WriteString("The second block is the clean variant: identical code with those marker comments removed.\n")
	return b.String()
}
