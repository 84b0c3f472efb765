package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewloop/engine/pkg/catalog"
	"github.com/reviewloop/engine/pkg/llm"
	"github.com/reviewloop/engine/pkg/models"
)

func defectA() models.Defect {
	return models.Defect{Code: "logical_off_by_one", CategoryCode: "logical", Name: models.Localized{EN: "Off by one"}, Difficulty: models.DifficultyMedium}
}

func defectB() models.Defect {
	return models.Defect{Code: "logical_null_deref", CategoryCode: "logical", Name: models.Localized{EN: "Null dereference"}, Difficulty: models.DifficultyMedium}
}

func newTestStore() catalog.Store {
	cat := models.DefectCategory{Code: "logical", Name: models.Localized{EN: "Logical"}, Active: true}
	return catalog.NewInMemoryStore([]models.DefectCategory{cat}, []models.Defect{defectA(), defectB()})
}

func genResponse() string {
	return "```java\n// ERROR 1: Off by one\nclass A {}\n```\n```java\nclass A {}\n```"
}

func newTestEngine(t *testing.T, gen, review, summary *llm.Scripted) (*Engine, models.DefectSelection) {
	t.Helper()
	store := newTestStore()
	roles := llm.Roles{Generative: gen, Review: review, Summary: summary}
	e, err := New(store, roles)
	require.NoError(t, err)
	return e, models.DefectSelection{ExplicitDefects: []string{defectA().Code}}
}

func TestNew_MissingRoleIsSetupError(t *testing.T) {
	store := newTestStore()
	_, err := New(store, llm.Roles{Generative: &llm.Scripted{}, Review: &llm.Scripted{}})
	require.Error(t, err)
	var setupErr *models.SetupError
	assert.ErrorAs(t, err, &setupErr)
}

func TestNew_NilStoreIsSetupError(t *testing.T) {
	_, err := New(nil, llm.Roles{Generative: &llm.Scripted{}, Review: &llm.Scripted{}, Summary: &llm.Scripted{}})
	require.Error(t, err)
	var setupErr *models.SetupError
	assert.ErrorAs(t, err, &setupErr)
}

// Scenario 1: happy path, single evaluation attempt.
func TestAdvance_HappyPathSingleAttempt(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{genResponse()}}
	review := &llm.Scripted{Responses: []string{`{"found_errors":["logical_off_by_one"],"missing_errors":[],"valid":true}`}}
	summary := &llm.Scripted{}

	e, selection := newTestEngine(t, gen, review, summary)
	state, err := e.NewWorkflow(context.Background(), selection, models.DefaultLimits(), models.LocaleEN, models.PhaseFull)
	require.NoError(t, err)

	next, err := e.Advance(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, models.StepReview, next.Step)
	assert.Equal(t, 1, next.EvaluationAttempts)
	assert.True(t, next.Artifact != nil)
	status := e.Status(next)
	assert.True(t, status.HasArtifact)
}

// Scenario 2: one regeneration then success.
func TestAdvance_OneRegenerationThenSuccess(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{genResponse(), genResponse()}}
	review := &llm.Scripted{Responses: []string{
		`{"found_errors":[],"missing_errors":["logical_off_by_one"],"valid":false}`,
		`{"found_errors":["logical_off_by_one"],"missing_errors":[],"valid":true}`,
	}}
	summary := &llm.Scripted{}

	e, selection := newTestEngine(t, gen, review, summary)
	state, err := e.NewWorkflow(context.Background(), selection, models.DefaultLimits(), models.LocaleEN, models.PhaseFull)
	require.NoError(t, err)

	next, err := e.Advance(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, models.StepReview, next.Step)
	assert.Equal(t, 2, next.EvaluationAttempts)
}

// Scenario 3: regeneration budget exhausted, forced into review.
func TestAdvance_ExhaustedRegenerationForcesReview(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{genResponse(), genResponse()}}
	review := &llm.Scripted{Responses: []string{
		`{"found_errors":[],"missing_errors":["logical_off_by_one"],"valid":false}`,
		`{"found_errors":[],"missing_errors":["logical_off_by_one"],"valid":false}`,
	}}
	summary := &llm.Scripted{}

	limits := models.Limits{MaxEvaluationAttempts: 2, MaxIterations: 3}
	e, selection := newTestEngine(t, gen, review, summary)
	state, err := e.NewWorkflow(context.Background(), selection, limits, models.LocaleEN, models.PhaseFull)
	require.NoError(t, err)

	next, err := e.Advance(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, models.StepReview, next.Step)
	assert.Equal(t, 2, next.EvaluationAttempts)
	require.NotNil(t, next.Artifact)
}

// Scenario 4: review grading sufficient on first try reaches completion
// with a ComparisonReport on the next Advance.
func TestSubmitReview_SufficientOnFirstTry(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{genResponse()}}
	review := &llm.Scripted{Responses: []string{
		`{"found_errors":["logical_off_by_one"],"missing_errors":[],"valid":true}`,
		`{"identified_problems":[{"problem":"logical_off_by_one","justification":"seen"}],"missed_problems":[],"identified_count":1,"total_problems":1,"identified_percentage":100,"review_sufficient":true}`,
		"Good catch, keep it up.",
	}}
	summary := &llm.Scripted{Responses: []string{`{"encouragement":"Nice work."}`}}

	e, selection := newTestEngine(t, gen, review, summary)
	state, err := e.NewWorkflow(context.Background(), selection, models.DefaultLimits(), models.LocaleEN, models.PhaseFull)
	require.NoError(t, err)

	state, err = e.Advance(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, models.StepReview, state.Step)

	state, err = e.SubmitReview(context.Background(), state, "Line 5: A is present because index runs one past the bound.")
	require.NoError(t, err)

	assert.True(t, state.ReviewSufficient)
	assert.Equal(t, 2, state.CurrentIteration)
	assert.Equal(t, models.StepComplete, state.Step)
	require.NotNil(t, state.Report)
}

// Scenario 5: review iterations exhausted without full sufficiency.
func TestSubmitReview_IterationsExhaustedWithoutSufficiency(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{genResponse()}}
	review := &llm.Scripted{Responses: []string{
		`{"found_errors":["logical_off_by_one","logical_null_deref"],"missing_errors":[],"valid":true}`,
		`{"identified_problems":[{"problem":"logical_off_by_one"}],"missed_problems":[{"problem":"logical_null_deref"}],"identified_count":1,"total_problems":2,"identified_percentage":50,"review_sufficient":false}`,
		"",
		`{"identified_problems":[{"problem":"logical_off_by_one"}],"missed_problems":[{"problem":"logical_null_deref"}],"identified_count":1,"total_problems":2,"identified_percentage":50,"review_sufficient":false}`,
		"",
	}}
	summary := &llm.Scripted{Responses: []string{`{}`}}

	limits := models.Limits{MaxEvaluationAttempts: 3, MaxIterations: 2}
	selection := models.DefectSelection{ExplicitDefects: []string{defectA().Code, defectB().Code}}
	store := newTestStore()
	e, err := New(store, llm.Roles{Generative: gen, Review: review, Summary: summary})
	require.NoError(t, err)

	state, err := e.NewWorkflow(context.Background(), selection, limits, models.LocaleEN, models.PhaseFull)
	require.NoError(t, err)

	state, err = e.Advance(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, models.StepReview, state.Step)

	state, err = e.SubmitReview(context.Background(), state, "Line 1: off by one issue here clearly.")
	require.NoError(t, err)
	require.Equal(t, models.StepReview, state.Step)
	assert.Equal(t, 2, state.CurrentIteration)

	state, err = e.SubmitReview(context.Background(), state, "Line 1: off by one issue here clearly, again.")
	require.NoError(t, err)

	assert.Equal(t, models.StepComplete, state.Step)
	assert.Equal(t, 3, state.CurrentIteration)
	require.NotNil(t, state.Report)
	assert.Equal(t, 1, state.Report.PerformanceSummary.IdentifiedCount)
	assert.Equal(t, 2, state.Report.PerformanceSummary.TotalProblems)
	assert.InDelta(t, 50.0, state.Report.PerformanceSummary.Accuracy, 0.001)
}

// A failed review-grading invocation surfaces as a terminal ModelError
// rather than being retried or silently graded as "0 identified".
func TestSubmitReview_GraderModelErrorSurfacesAsTerminal(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{genResponse()}}
	review := &llm.Scripted{
		Responses: []string{`{"found_errors":["logical_off_by_one"],"missing_errors":[],"valid":true}`, ""},
		Errs:      []error{nil, assert.AnError},
	}
	summary := &llm.Scripted{}

	e, selection := newTestEngine(t, gen, review, summary)
	state, err := e.NewWorkflow(context.Background(), selection, models.DefaultLimits(), models.LocaleEN, models.PhaseFull)
	require.NoError(t, err)

	state, err = e.Advance(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, models.StepReview, state.Step)

	state, err = e.SubmitReview(context.Background(), state, "Line 1: off by one issue here clearly.")
	require.NoError(t, err)

	assert.Equal(t, models.StepComplete, state.Step)
	assert.NotEmpty(t, state.Error)
	assert.Nil(t, state.Report)
}

// Scenario 6: cancellation mid-review.
func TestCancel_MidReview(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{genResponse()}}
	review := &llm.Scripted{Responses: []string{`{"found_errors":["logical_off_by_one"],"missing_errors":[],"valid":true}`}}
	summary := &llm.Scripted{}

	e, selection := newTestEngine(t, gen, review, summary)
	state, err := e.NewWorkflow(context.Background(), selection, models.DefaultLimits(), models.LocaleEN, models.PhaseFull)
	require.NoError(t, err)

	state, err = e.Advance(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, models.StepReview, state.Step)

	cancelled := e.Cancel(state)
	assert.Equal(t, models.StepComplete, cancelled.Step)
	assert.Equal(t, "cancelled", cancelled.Error)

	// Cancel must not mutate the original state passed in.
	assert.Equal(t, models.StepReview, state.Step)

	again, err := e.Advance(context.Background(), cancelled)
	require.NoError(t, err)
	assert.Equal(t, cancelled, again)
}

// Suspension idempotence: Advance on a review step with no pending review
// is a fixed point.
func TestAdvance_SuspensionIsFixedPoint(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{genResponse()}}
	review := &llm.Scripted{Responses: []string{`{"found_errors":["logical_off_by_one"],"missing_errors":[],"valid":true}`}}
	summary := &llm.Scripted{}

	e, selection := newTestEngine(t, gen, review, summary)
	state, err := e.NewWorkflow(context.Background(), selection, models.DefaultLimits(), models.LocaleEN, models.PhaseFull)
	require.NoError(t, err)

	state, err = e.Advance(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, models.StepReview, state.Step)

	again, err := e.Advance(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, state, again)
}

func TestSubmitReview_WrongStepRejected(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{genResponse()}}
	review := &llm.Scripted{}
	summary := &llm.Scripted{}

	e, selection := newTestEngine(t, gen, review, summary)
	state, err := e.NewWorkflow(context.Background(), selection, models.DefaultLimits(), models.LocaleEN, models.PhaseFull)
	require.NoError(t, err)

	_, err = e.SubmitReview(context.Background(), state, "a review long enough to pass the length check")
	assert.ErrorIs(t, err, models.ErrWrongStep)
}

func TestSubmitReview_TooShortRejected(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{genResponse()}}
	review := &llm.Scripted{Responses: []string{`{"found_errors":["logical_off_by_one"],"missing_errors":[],"valid":true}`}}
	summary := &llm.Scripted{}

	e, selection := newTestEngine(t, gen, review, summary)
	state, err := e.NewWorkflow(context.Background(), selection, models.DefaultLimits(), models.LocaleEN, models.PhaseFull)
	require.NoError(t, err)
	state, err = e.Advance(context.Background(), state)
	require.NoError(t, err)

	_, err = e.SubmitReview(context.Background(), state, "too short")
	assert.ErrorIs(t, err, models.ErrReviewTooShort)
}

// Generation-only phase exits the evaluation loop as soon as an evaluation
// result exists, even an invalid one (Branch A rule 3).
func TestAdvance_GenerationPhaseExitsEarly(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{genResponse()}}
	review := &llm.Scripted{Responses: []string{`{"found_errors":[],"missing_errors":["logical_off_by_one"],"valid":false}`}}
	summary := &llm.Scripted{}

	e, selection := newTestEngine(t, gen, review, summary)
	state, err := e.NewWorkflow(context.Background(), selection, models.DefaultLimits(), models.LocaleEN, models.PhaseGeneration)
	require.NoError(t, err)

	next, err := e.Advance(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, models.StepReview, next.Step)
	assert.Equal(t, 1, next.EvaluationAttempts)
}

// max_evaluation_attempts = 0: generate -> evaluate -> review, never
// regenerates.
func TestAdvance_ZeroEvaluationAttemptsNeverRegenerates(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{genResponse()}}
	review := &llm.Scripted{Responses: []string{`{"found_errors":[],"missing_errors":["logical_off_by_one"],"valid":false}`}}
	summary := &llm.Scripted{}

	limits := models.Limits{MaxEvaluationAttempts: 0, MaxIterations: 3}
	e, selection := newTestEngine(t, gen, review, summary)
	state, err := e.NewWorkflow(context.Background(), selection, limits, models.LocaleEN, models.PhaseFull)
	require.NoError(t, err)
	require.Equal(t, 0, state.Limits.MaxEvaluationAttempts)

	next, err := e.Advance(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, models.StepReview, next.Step)
	assert.Equal(t, 1, next.EvaluationAttempts)
	assert.Equal(t, 1, gen.CallCount())
}

func TestNewWorkflow_ValidationErrorOnInvalidSelection(t *testing.T) {
	gen := &llm.Scripted{}
	review := &llm.Scripted{}
	summary := &llm.Scripted{}
	e, _ := newTestEngine(t, gen, review, summary)

	_, err := e.NewWorkflow(context.Background(), models.DefectSelection{}, models.DefaultLimits(), models.LocaleEN, models.PhaseFull)
	require.Error(t, err)
	var validationErr *models.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestModelError_OnGenerationSurfacesImmediately(t *testing.T) {
	gen := &llm.Scripted{Responses: []string{""}}
	review := &llm.Scripted{}
	summary := &llm.Scripted{}

	e, selection := newTestEngine(t, gen, review, summary)
	state, err := e.NewWorkflow(context.Background(), selection, models.DefaultLimits(), models.LocaleEN, models.PhaseFull)
	require.NoError(t, err)

	next, err := e.Advance(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, models.StepComplete, next.Step)
	assert.NotEmpty(t, next.Error)
}
