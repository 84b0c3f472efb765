package models

// Phase scopes which loops a workflow instance runs.
type Phase string

const (
	PhaseGeneration Phase = "generation"
	PhaseReview     Phase = "review"
	PhaseFull       Phase = "full"
)

// Step names the node a WorkflowState currently sits at. "review" is the
// one suspension point: the engine halts there until SubmitReview deposits
// a pending review.
type Step string

const (
	StepGenerate       Step = "generate"
	StepEvaluate       Step = "evaluate"
	StepRegenerate     Step = "regenerate"
	StepReview         Step = "review"
	StepAnalyze        Step = "analyze"
	StepGenerateReport Step = "generate_comparison_report"
	StepGenerateSummary Step = "generate_summary"
	StepComplete       Step = "complete"
)

// Limits bounds the two retry/iteration loops a workflow instance runs.
type Limits struct {
	MaxEvaluationAttempts int `json:"max_evaluation_attempts"`
	MaxIterations         int `json:"max_iterations"`
}

// DefaultLimits returns the standard defaults: max_evaluation_attempts=3,
// max_iterations=3.
func DefaultLimits() Limits {
	return Limits{MaxEvaluationAttempts: 3, MaxIterations: 3}
}

// WorkflowState is the complete instance the engine advances. It is the
// single unit of serialization: every field here round-trips through JSON
// so a suspended workflow can be persisted at the review_code boundary and
// resumed in another process.
type WorkflowState struct {
	WorkflowID string `json:"workflow_id"`
	Phase      Phase  `json:"phase"`
	Step       Step   `json:"step"`
	Locale     Locale `json:"locale"`

	Selection DefectSelection   `json:"selection"`
	Limits    Limits            `json:"limits"`
	Length    LengthBucket      `json:"length"`

	Artifact           *CodeArtifact     `json:"artifact,omitempty"`
	Evaluation         *EvaluationResult `json:"evaluation,omitempty"`
	RegenerationHint   string            `json:"regeneration_hint,omitempty"`
	EvaluationAttempts int               `json:"evaluation_attempts"`

	PendingReview    string          `json:"pending_review,omitempty"`
	ReviewHistory    []ReviewAttempt `json:"review_history"`
	CurrentIteration int             `json:"current_iteration"`
	ReviewSufficient bool            `json:"review_sufficient"`

	Report *ComparisonReport `json:"report,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// IsTerminal reports whether the engine has finished advancing this state:
// either it reached "complete" or an error was recorded.
func (s *WorkflowState) IsTerminal() bool {
	return s.Step == StepComplete || s.Error != ""
}

// LatestReviewAttempt returns a pointer into ReviewHistory for the most
// recent attempt, or nil if none has been submitted yet.
func (s *WorkflowState) LatestReviewAttempt() *ReviewAttempt {
	if len(s.ReviewHistory) == 0 {
		return nil
	}
	return &s.ReviewHistory[len(s.ReviewHistory)-1]
}

// StatusView is the derived, read-only projection returned by Status.
type StatusView struct {
	Step               Step
	Phase              Phase
	HasArtifact        bool
	EvaluationAttempts int
	CurrentIteration   int
	ReviewSufficient   bool
	HasError           bool
}

// Status projects a WorkflowState into its external StatusView.
func Status(s *WorkflowState) StatusView {
	return StatusView{
		Step:               s.Step,
		Phase:              s.Phase,
		HasArtifact:        s.Artifact != nil,
		EvaluationAttempts: s.EvaluationAttempts,
		CurrentIteration:   s.CurrentIteration,
		ReviewSufficient:   s.ReviewSufficient,
		HasError:           s.Error != "",
	}
}
