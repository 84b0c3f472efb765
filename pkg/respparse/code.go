// Package respparse implements the Response Parser: pure functions that
// extract structured artifacts from free-form model output with layered
// fallbacks. It never returns an error to callers; parse failures degrade
// to a best-effort result, optionally alongside a models.ParseError for
// logging.
package respparse

import (
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\\n?(.*?)```")

var markerLine = regexp.MustCompile(`//\s*ERROR\s+\d+:.*$`)

// ExtractCodeVariants pulls the annotated and clean code variants out of a
// generation response. With two or more fenced blocks, the first is
// annotated and the second is clean. With exactly one, it serves as both.
// With none, the whole response is treated as annotated and clean is
// derived by stripping marker comments.
func ExtractCodeVariants(response string) (annotated, clean string) {
	matches := fencedBlock.FindAllStringSubmatch(response, -1)

	switch {
	case len(matches) >= 2:
		annotated = strings.TrimSpace(matches[0][1])
		clean = strings.TrimSpace(matches[1][1])
	case len(matches) == 1:
		annotated = strings.TrimSpace(matches[0][1])
		clean = annotated
	default:
		annotated = strings.TrimSpace(response)
		clean = DeriveClean(annotated)
	}
	return annotated, clean
}

// DeriveClean strips "// ERROR N: ..." marker comments from each line of
// annotated, preserving line count and any code preceding the marker.
func DeriveClean(annotated string) string {
	lines := strings.Split(annotated, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(markerLine.ReplaceAllString(line, ""), " \t")
	}
	return strings.Join(lines, "\n")
}
