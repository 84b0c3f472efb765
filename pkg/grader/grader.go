// Package grader implements the Review Grader component: grades a
// learner's review against the ground-truth manifest and generates
// targeted guidance for the next iteration.
package grader

import (
	"context"
	"regexp"
	"strings"

	"github.com/reviewloop/engine/pkg/llm"
	"github.com/reviewloop/engine/pkg/models"
	"github.com/reviewloop/engine/pkg/prompt"
	"github.com/reviewloop/engine/pkg/respparse"
)

// Grader compares learner reviews to ground truth.
type Grader struct {
	Model llm.Client
}

// New builds a Grader over the review-role model client.
func New(model llm.Client) *Grader {
	return &Grader{Model: model}
}

var lineRefPattern = regexp.MustCompile(`(?i)(Line|行)\s*\d+\s*[:：]`)

// AnalyzeReview grades reviewText against the manifest, reconciling the
// model's verdict against the known problem count. Unlike evaluation, a
// failed review-model invocation is never retried: it surfaces as a
// ModelError so the engine halts rather than silently grading an empty
// verdict.
func (g *Grader) AnalyzeReview(ctx context.Context, artifact *models.CodeArtifact, manifest []models.Defect, reviewText string, locale models.Locale) (models.ReviewAnalysis, error) {
	trimmed := strings.TrimSpace(reviewText)
	if trimmed == "" {
		return models.ReviewAnalysis{TotalProblems: len(manifest), FormatInvalid: true}, nil
	}
	if !lineRefPattern.MatchString(trimmed) {
		return models.ReviewAnalysis{TotalProblems: len(manifest), FormatInvalid: true}, nil
	}

	p := prompt.ReviewAnalysis(locale, artifact.Annotated, manifest, trimmed)
	text, err := g.Model.Invoke(ctx, p)
	if err != nil {
		return models.ReviewAnalysis{}, &models.ModelError{Role: string(llm.RoleReview), Node: "analyze_review", Err: err}
	}

	parsed := respparse.ParseJSON(text, "review_analysis")
	analysis := respparse.ReviewAnalysisResult(parsed)
	analysis.Reconcile(len(manifest))
	return analysis, nil
}

// GenerateGuidance builds targeted feedback for the next review iteration,
// trimmed to at most 4 sentences. Returns "" if invocation fails.
func (g *Grader) GenerateGuidance(ctx context.Context, manifest []models.Defect, reviewText string, analysis models.ReviewAnalysis, iteration, maxIterations int, locale models.Locale) string {
	p := prompt.Guidance(locale, manifest, reviewText, analysis, iteration, maxIterations)
	text, err := g.Model.Invoke(ctx, p)
	if err != nil {
		return ""
	}
	return prompt.TrimSentences(text, 4)
}
