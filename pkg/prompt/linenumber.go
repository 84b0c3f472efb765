package prompt

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Number prepends 1-based, right-aligned line numbers to code, separated
// by " | ". Width is ceil(log10(N+1)) so the widest number never needs
// re-padding of earlier lines.
func Number(code string) string {
	lines := strings.Split(code, "\n")
	width := int(math.Ceil(math.Log10(float64(len(lines) + 1))))
	if width < 1 {
		width = 1
	}

	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%*d | %s\n", width, i+1, line)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

var lineNumberPrefix = regexp.MustCompile(`^\s*\d+\s*\|\s?`)

// StripNumbers reverses Number: StripNumbers(Number(code)) returns code
// unchanged.
func StripNumbers(numbered string) string {
	lines := strings.Split(numbered, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = lineNumberPrefix.ReplaceAllString(line, "")
	}
	return strings.Join(out, "\n")
}
