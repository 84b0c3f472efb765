package models

// IdentifiedProblem is one defect a learner's review correctly called out.
type IdentifiedProblem struct {
	Problem       string `json:"problem"`
	Justification string `json:"justification,omitempty"`
}

// MissedProblem is a manifest defect the learner's review did not mention.
type MissedProblem struct {
	Problem string `json:"problem"`
	Hint    string `json:"hint,omitempty"`
}

// ReviewAnalysis is the graded result of one learner review against the
// ground-truth manifest. Immutable once attached to a ReviewAttempt.
type ReviewAnalysis struct {
	Identified      []IdentifiedProblem `json:"identified"`
	Missed          []MissedProblem     `json:"missed"`
	IdentifiedCount int                 `json:"identified_count"`
	TotalProblems   int                 `json:"total_problems"`
	Accuracy        float64             `json:"accuracy"`
	Sufficient      bool                `json:"sufficient"`
	FormatInvalid   bool                `json:"format_invalid,omitempty"`
}

// Reconcile derives IdentifiedCount, Accuracy, and Sufficient from
// Identified/Missed against the manifest size.
func (a *ReviewAnalysis) Reconcile(manifestSize int) {
	a.TotalProblems = manifestSize
	a.IdentifiedCount = len(a.Identified)
	if manifestSize == 0 {
		a.Accuracy = 100
	} else {
		a.Accuracy = float64(a.IdentifiedCount) / float64(manifestSize) * 100
	}
	a.Sufficient = a.IdentifiedCount == manifestSize && manifestSize > 0
}

// ReviewAttempt is one learner submission together with its eventual
// analysis and any guidance generated from it.
type ReviewAttempt struct {
	IterationNumber int             `json:"iteration_number"`
	RawText         string          `json:"raw_text"`
	Analysis        *ReviewAnalysis `json:"analysis,omitempty"`
	Guidance        string          `json:"guidance,omitempty"`
}
