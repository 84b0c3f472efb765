package engine

import "github.com/reviewloop/engine/pkg/models"

// shouldRegenerateOrReview is Branch A, evaluated after evaluate_code.
// Rules are checked in order; the first match wins.
func shouldRegenerateOrReview(s *models.WorkflowState) models.Step {
	if s.EvaluationAttempts >= s.Limits.MaxEvaluationAttempts {
		return models.StepReview
	}
	if s.Evaluation != nil && s.Evaluation.Valid {
		return models.StepReview
	}
	if s.Phase == models.PhaseGeneration && s.Evaluation != nil {
		return models.StepReview
	}
	if s.Evaluation != nil && len(s.Evaluation.Missing) > 0 && s.EvaluationAttempts < s.Limits.MaxEvaluationAttempts {
		return models.StepRegenerate
	}
	return models.StepReview
}

// shouldContinueReview is Branch B, evaluated after analyze_review. Rules
// are checked in order; the first match wins. It may set ReviewSufficient
// as a side effect of rule 4.
func shouldContinueReview(s *models.WorkflowState) models.Step {
	if s.CurrentIteration > s.Limits.MaxIterations {
		return models.StepGenerateReport
	}
	if s.ReviewSufficient {
		return models.StepGenerateReport
	}
	if s.Phase == models.PhaseGeneration {
		return models.StepGenerateReport
	}

	latest := s.LatestReviewAttempt()
	if latest != nil && latest.Analysis != nil &&
		latest.Analysis.IdentifiedCount >= latest.Analysis.TotalProblems && latest.Analysis.TotalProblems > 0 {
		s.ReviewSufficient = true
		return models.StepGenerateReport
	}

	if s.CurrentIteration <= s.Limits.MaxIterations && (s.Phase == models.PhaseReview || s.Phase == models.PhaseFull) {
		return models.StepReview
	}
	return models.StepGenerateReport
}
