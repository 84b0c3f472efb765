// Package engine implements the Workflow Engine: a seven-node state
// machine over pkg/models.WorkflowState, dispatching nodes in a fixed
// linear graph rather than a generic parallel DAG. A single workflow
// instance is single-threaded; concurrency across instances is the
// caller's concern.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/reviewloop/engine/pkg/catalog"
	"github.com/reviewloop/engine/pkg/evaluator"
	"github.com/reviewloop/engine/pkg/generator"
	"github.com/reviewloop/engine/pkg/grader"
	"github.com/reviewloop/engine/pkg/llm"
	"github.com/reviewloop/engine/pkg/models"
	"github.com/reviewloop/engine/pkg/reporter"
)

// Engine composes the Catalog Store and the four downstream components
// (Generator/Evaluator/Grader/Reporter) into the bounded-retry state
// machine.
type Engine struct {
	Catalog   catalog.Store
	Generator *generator.Generator
	Evaluator *evaluator.Evaluator
	Grader    *grader.Grader
	Reporter  *reporter.Reporter

	// DefaultLength is the length bucket every workflow generates with.
	// Role-to-model mapping and the two loop limits are engine-construction
	// config; length bucket selection has no dedicated caller-facing
	// parameter, so it lives here as a construction-time default instead.
	DefaultLength models.LengthBucket
	DefaultLocale models.Locale
}

// New builds an Engine. roles must have Generative, Review and Summary all
// configured, since every completed workflow reaches generate_summary. A
// missing role is a SetupError surfaced immediately by New.
func New(store catalog.Store, roles llm.Roles) (*Engine, error) {
	if store == nil {
		return nil, &models.SetupError{Reason: "catalog store not configured"}
	}
	for _, role := range []llm.Role{llm.RoleGenerative, llm.RoleReview, llm.RoleSummary} {
		if _, ok := roles.Get(role); !ok {
			return nil, &models.SetupError{Reason: fmt.Sprintf("model client role %q not configured", role), Err: models.ErrRoleNotConfigured}
		}
	}

	return &Engine{
		Catalog:       store,
		Generator:     generator.New(store, roles.Generative),
		Evaluator:     evaluator.New(roles.Review),
		Grader:        grader.New(roles.Review),
		Reporter:      reporter.New(roles.Summary),
		DefaultLength: models.LengthMedium,
		DefaultLocale: models.LocaleEN,
	}, nil
}

// NewWorkflow constructs initial state; it does not invoke any model. A
// SetupError here means the workflow never begins.
func (e *Engine) NewWorkflow(ctx context.Context, selection models.DefectSelection, limits models.Limits, locale models.Locale, phase models.Phase) (*models.WorkflowState, error) {
	if err := selection.Validate(); err != nil {
		return nil, err
	}
	if _, err := e.Catalog.ListCategories(ctx, locale); err != nil {
		return nil, &models.SetupError{Reason: "catalog unavailable", Err: err}
	}

	if limits.MaxEvaluationAttempts == 0 && limits.MaxIterations == 0 {
		limits = models.DefaultLimits()
	}
	if phase == "" {
		phase = models.PhaseFull
	}
	if locale == "" {
		locale = e.DefaultLocale
	}

	return &models.WorkflowState{
		WorkflowID:       uuid.New().String(),
		Phase:            phase,
		Step:             models.StepGenerate,
		Locale:           locale,
		Selection:        selection,
		Limits:           limits,
		Length:           e.DefaultLength,
		CurrentIteration: 1,
		ReviewHistory:    []models.ReviewAttempt{},
	}, nil
}

// Status projects a WorkflowState into its external StatusView.
func (e *Engine) Status(state *models.WorkflowState) models.StatusView {
	return models.Status(state)
}

// Cancel transitions state to a terminal error, distinguishable from any
// ModelError by error="cancelled". It never mutates the state passed in.
func (e *Engine) Cancel(state *models.WorkflowState) *models.WorkflowState {
	next := cloneState(state)
	next.Error = (&models.CancelledError{}).Error()
	next.Step = models.StepComplete
	return next
}
