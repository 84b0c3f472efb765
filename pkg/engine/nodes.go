package engine

import (
	"context"

	"github.com/reviewloop/engine/pkg/models"
	"github.com/reviewloop/engine/pkg/reporter"
)

// runGenerate implements the generate_code node. A failed invocation
// surfaces immediately: generation errors are never automatically retried.
func (e *Engine) runGenerate(ctx context.Context, s *models.WorkflowState) {
	artifact, err := e.Generator.Generate(ctx, s.Selection, s.Length, s.Selection.Difficulty, s.Locale, "")
	if err != nil {
		s.Error = err.Error()
		s.Step = models.StepComplete
		return
	}
	s.Artifact = artifact
	s.Step = models.StepEvaluate
}

// runEvaluate implements the evaluate_code node. It increments
// EvaluationAttempts exactly once, before Branch A is evaluated.
func (e *Engine) runEvaluate(ctx context.Context, s *models.WorkflowState) {
	result := e.Evaluator.Evaluate(ctx, s.Artifact, s.Locale)
	s.Evaluation = &result
	s.EvaluationAttempts++

	next := shouldRegenerateOrReview(s)
	if next == models.StepRegenerate {
		s.RegenerationHint = e.Evaluator.BuildRegenerationFeedback(s.Artifact, result, s.Locale)
	}
	s.Step = next
}

// runRegenerate implements the regenerate_code node.
func (e *Engine) runRegenerate(ctx context.Context, s *models.WorkflowState) {
	if s.EvaluationAttempts >= s.Limits.MaxEvaluationAttempts {
		s.Step = models.StepReview
		return
	}

	artifact, err := e.Generator.Regenerate(ctx, s.RegenerationHint, s.Artifact.Manifest, s.Artifact.Domain, s.Length, s.Selection.Difficulty)
	if err != nil {
		s.Error = err.Error()
		s.Step = models.StepComplete
		return
	}
	s.Artifact = artifact
	s.Step = models.StepEvaluate
}

// runReview implements the review_code suspension point. It returns true
// when the node halts the engine awaiting SubmitReview.
func (e *Engine) runReview(s *models.WorkflowState) (suspended bool) {
	if s.PendingReview == "" {
		return true
	}

	s.ReviewHistory = append(s.ReviewHistory, models.ReviewAttempt{
		IterationNumber: s.CurrentIteration,
		RawText:         s.PendingReview,
	})
	s.PendingReview = ""
	s.Step = models.StepAnalyze
	return false
}

// runAnalyze implements the analyze_review node. It attaches analysis to
// the latest ReviewAttempt and increments CurrentIteration exactly once,
// after attaching.
func (e *Engine) runAnalyze(ctx context.Context, s *models.WorkflowState) {
	attempt := s.LatestReviewAttempt()
	analysis, err := e.Grader.AnalyzeReview(ctx, s.Artifact, s.Artifact.Manifest, attempt.RawText, s.Locale)
	if err != nil {
		s.Error = err.Error()
		s.Step = models.StepComplete
		return
	}
	attempt.Analysis = &analysis
	attempt.Guidance = e.Grader.GenerateGuidance(ctx, s.Artifact.Manifest, attempt.RawText, analysis, s.CurrentIteration, s.Limits.MaxIterations, s.Locale)

	if analysis.Sufficient {
		s.ReviewSufficient = true
	}
	s.CurrentIteration++
	s.Step = shouldContinueReview(s)
}

// runGenerateReport implements the generate_comparison_report node.
func (e *Engine) runGenerateReport(ctx context.Context, s *models.WorkflowState) {
	var latest *models.ReviewAnalysis
	if attempt := s.LatestReviewAttempt(); attempt != nil {
		latest = attempt.Analysis
	}

	var manifest []models.Defect
	if s.Artifact != nil {
		manifest = s.Artifact.Manifest
	}

	report := e.Reporter.BuildComparisonReport(ctx, manifest, latest, s.ReviewHistory, s.Locale)
	s.Report = &report
	s.Step = models.StepGenerateSummary
}

// runGenerateSummary implements the generate_summary node: the terminal
// node of every workflow.
func (e *Engine) runGenerateSummary(s *models.WorkflowState) {
	if s.Report == nil {
		var latest *models.ReviewAnalysis
		if attempt := s.LatestReviewAttempt(); attempt != nil {
			latest = attempt.Analysis
		}
		report := reporter.Fallback(latest, len(s.ReviewHistory))
		s.Report = &report
	}
	s.Step = models.StepComplete
}
