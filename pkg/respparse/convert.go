package respparse

import "github.com/reviewloop/engine/pkg/models"

func asStringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

func asFloat(v any, def float64) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return def
}

func asInt(v any, def int) int {
	if f, ok := v.(float64); ok {
		return int(f)
	}
	return def
}

func asString(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

func asObjectSlice(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// EvaluationVerdict converts a ParsedObject into an EvaluationResult,
// leaving Found/Missing/Valid/Feedback as the model reported them; the
// caller (Code Evaluator) is responsible for normalizing against the
// ground-truth manifest.
func EvaluationVerdict(p ParsedObject) models.EvaluationResult {
	f := p.Fields
	return models.EvaluationResult{
		Found:    asStringSlice(f["found_errors"]),
		Missing:  asStringSlice(f["missing_errors"]),
		Valid:    asBool(f["valid"], false),
		Feedback: asString(f["feedback"], ""),
	}
}

// ReviewAnalysisResult converts a ParsedObject into a ReviewAnalysis. The
// caller reconciles counts against the manifest afterward.
func ReviewAnalysisResult(p ParsedObject) models.ReviewAnalysis {
	f := p.Fields

	identified := make([]models.IdentifiedProblem, 0)
	for _, item := range asObjectSlice(f["identified_problems"]) {
		identified = append(identified, models.IdentifiedProblem{
			Problem:       asString(field1(item, "problem"), ""),
			Justification: asString(field1(item, "justification"), ""),
		})
	}

	missed := make([]models.MissedProblem, 0)
	for _, item := range asObjectSlice(f["missed_problems"]) {
		missed = append(missed, models.MissedProblem{
			Problem: asString(field1(item, "problem"), ""),
			Hint:    asString(field1(item, "hint"), ""),
		})
	}

	return models.ReviewAnalysis{
		Identified:      identified,
		Missed:          missed,
		IdentifiedCount: asInt(f["identified_count"], len(identified)),
		TotalProblems:   asInt(f["total_problems"], 0),
		Accuracy:        asFloat(f["identified_percentage"], 0),
		Sufficient:      asBool(f["review_sufficient"], false),
	}
}

// field1 is a single-map variant of the alias lookup used for nested
// objects inside identified_problems/missed_problems arrays.
func field1(m map[string]any, canonical string) any {
	for _, key := range aliases[canonical] {
		if v, ok := m[key]; ok {
			return v
		}
	}
	return nil
}

// ComparisonReportResult converts a ParsedObject into a ComparisonReport.
func ComparisonReportResult(p ParsedObject) models.ComparisonReport {
	f := p.Fields

	var summary models.PerformanceSummary
	if raw, ok := f["performance_summary"].(map[string]any); ok {
		summary = models.PerformanceSummary{
			IdentifiedCount: asInt(field1(raw, "identified_count"), 0),
			TotalProblems:   asInt(field1(raw, "total_problems"), 0),
			Accuracy:        asFloat(field1(raw, "accuracy"), 0),
			IterationsUsed:  asInt(field1(raw, "iterations_used"), 0),
		}
	}

	return models.ComparisonReport{
		PerformanceSummary:  summary,
		CorrectlyIdentified: asStringSlice(f["correctly_identified"]),
		Missed:              asStringSlice(f["missed"]),
		ImprovementTips:     asStringSlice(f["improvement_tips"]),
		LanguageGuidance:    asStringSlice(f["language_guidance"]),
		Encouragement:       asString(f["encouragement"], ""),
		DetailedFeedback:    asStringSlice(f["detailed_feedback"]),
	}
}
