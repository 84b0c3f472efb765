package respparse

import (
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/reviewloop/engine/pkg/models"
)

var errParseExhausted = errors.New("all parse layers exhausted")

// ParsedObject is the layer-agnostic result of parsing a model's JSON
// response: a flat-ish map of field values, plus the stage at which
// parsing succeeded (or "fallback" if every layer failed).
type ParsedObject struct {
	Fields map[string]any
	Stage  string
	Err    *models.ParseError
}

// aliases maps a canonical field name to every locale-specific key the
// parser also accepts, so a response can use either locale's field names.
var aliases = map[string][]string{
	"found_errors":           {"found_errors", "發現的缺陷"},
	"missing_errors":         {"missing_errors", "遺漏的缺陷"},
	"valid":                  {"valid", "有效"},
	"feedback":               {"feedback", "反饋"},
	"identified_problems":    {"identified_problems", "已識別問題"},
	"missed_problems":        {"missed_problems", "遺漏問題"},
	"identified_count":       {"identified_count", "已識別數量"},
	"total_problems":         {"total_problems", "問題總數"},
	"identified_percentage":  {"identified_percentage", "識別百分比"},
	"review_sufficient":      {"review_sufficient", "審查充分"},
	"performance_summary":    {"performance_summary", "表現摘要"},
	"correctly_identified":   {"correctly_identified", "正確識別"},
	"missed":                 {"missed", "遺漏"},
	"improvement_tips":       {"improvement_tips", "改進建議"},
	"language_guidance":      {"language_guidance", "語言指導"},
	"encouragement":          {"encouragement", "鼓勵"},
	"detailed_feedback":      {"detailed_feedback", "詳細反饋"},
	"problem":                {"problem", "問題"},
	"justification":          {"justification", "理由"},
	"hint":                   {"hint", "提示"},
	"iterations_used":        {"iterations_used", "使用的迭代次數"},
	"accuracy":               {"accuracy", "準確度"},
}

// field looks up a canonical field in a decoded map, trying every locale
// alias in order.
func field(m map[string]any, canonical string) (any, bool) {
	for _, key := range aliases[canonical] {
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	return nil, false
}

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)
var unquotedKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)

// repair fixes the two most common model JSON defects: trailing commas and
// unquoted keys.
func repair(s string) string {
	s = trailingComma.ReplaceAllString(s, "$1")
	s = unquotedKey.ReplaceAllString(s, `$1"$2"$3`)
	return s
}

// firstBalancedObject extracts the first balanced {...} substring, tracking
// brace depth while ignoring braces inside string literals.
func firstBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// regexFields extracts known scalar fields by regex when no valid JSON
// object can be recovered at all. It only recovers scalar values (numbers,
// booleans, quoted strings) of aliased fields; arrays and nested objects
// are not recovered.
func regexFields(s string) map[string]any {
	out := map[string]any{}
	scalarPattern := func(key string) *regexp.Regexp {
		return regexp.MustCompile(`"?` + regexp.QuoteMeta(key) + `"?\s*:\s*([0-9.]+|true|false|"[^"]*")`)
	}
	for canonical, keys := range aliases {
		for _, key := range keys {
			m := scalarPattern(key).FindStringSubmatch(s)
			if m == nil {
				continue
			}
			raw := strings.Trim(m[1], `"`)
			switch raw {
			case "true":
				out[canonical] = true
			case "false":
				out[canonical] = false
			default:
				if f, err := strconv.ParseFloat(raw, 64); err == nil {
					out[canonical] = f
				} else {
					out[canonical] = raw
				}
			}
			break
		}
	}
	return out
}

// ParseJSON runs the layered parse pipeline: strict parse, repair-and-retry,
// brace-matched extraction, field-by-field regex, and finally a minimal
// fallback object. It never fails outright.
func ParseJSON(response string, stage string) ParsedObject {
	trimmed := strings.TrimSpace(response)

	var m map[string]any
	if err := json.Unmarshal([]byte(trimmed), &m); err == nil {
		return ParsedObject{Fields: normalize(m), Stage: "strict"}
	}

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		repaired := repair(trimmed)
		if err := json.Unmarshal([]byte(repaired), &m); err == nil {
			return ParsedObject{Fields: normalize(m), Stage: "repaired"}
		}
	}

	if candidate, ok := firstBalancedObject(trimmed); ok {
		if err := json.Unmarshal([]byte(candidate), &m); err == nil {
			return ParsedObject{Fields: normalize(m), Stage: "brace-matched"}
		}
		if err := json.Unmarshal([]byte(repair(candidate)), &m); err == nil {
			return ParsedObject{Fields: normalize(m), Stage: "brace-matched-repaired"}
		}
	}

	if extracted := regexFields(trimmed); len(extracted) > 0 {
		return ParsedObject{Fields: extracted, Stage: "regex"}
	}

	raw := trimmed
	if len(raw) > 500 {
		raw = raw[:500]
	}
	return ParsedObject{
		Fields: map[string]any{"error": raw},
		Stage:  "fallback",
		Err:    &models.ParseError{Stage: stage, Err: errParseExhausted},
	}
}

// normalize re-keys a decoded map from any locale alias back onto its
// canonical field name, so downstream readers only ever look up canonical
// names.
func normalize(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for canonical := range aliases {
		if v, ok := field(m, canonical); ok {
			out[canonical] = v
		}
	}
	// Preserve any field not covered by an alias table (e.g. nested arrays'
	// own object fields handled by their own decode step).
	for k, v := range m {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}
