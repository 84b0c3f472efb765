package engine

import (
	"context"
	"strings"

	"github.com/reviewloop/engine/pkg/models"
)

// Advance drives state forward through nodes until it either reaches a
// terminal step or suspends at review_code awaiting a submitted review. It
// never mutates the state passed in; it returns a clone.
func (e *Engine) Advance(ctx context.Context, state *models.WorkflowState) (*models.WorkflowState, error) {
	s := cloneState(state)

	for {
		if s.IsTerminal() {
			return s, nil
		}

		switch s.Step {
		case models.StepGenerate:
			e.runGenerate(ctx, s)
		case models.StepEvaluate:
			e.runEvaluate(ctx, s)
		case models.StepRegenerate:
			e.runRegenerate(ctx, s)
		case models.StepReview:
			if suspended := e.runReview(s); suspended {
				return s, nil
			}
		case models.StepAnalyze:
			e.runAnalyze(ctx, s)
		case models.StepGenerateReport:
			e.runGenerateReport(ctx, s)
		case models.StepGenerateSummary:
			e.runGenerateSummary(s)
		default:
			return nil, &models.ValidationError{Field: "step", Message: "unknown workflow step: " + string(s.Step)}
		}
	}
}

// SubmitReview deposits a learner's review text onto a suspended workflow
// and resumes it. It fails if the workflow is not currently suspended at
// review_code, or if the review text is too short to grade meaningfully.
func (e *Engine) SubmitReview(ctx context.Context, state *models.WorkflowState, reviewText string) (*models.WorkflowState, error) {
	if state.Step != models.StepReview {
		return nil, models.ErrWrongStep
	}
	if len(strings.TrimSpace(reviewText)) < 10 {
		return nil, models.ErrReviewTooShort
	}

	s := cloneState(state)
	s.PendingReview = reviewText
	return e.Advance(ctx, s)
}
