package engine

import (
	"encoding/json"

	"github.com/reviewloop/engine/pkg/models"
)

// cloneState deep-copies a WorkflowState via a JSON round trip. Every node
// function in this package is a pure State -> State transform; cloning
// here keeps callers' states untouched across Advance/SubmitReview/Cancel
// calls.
func cloneState(s *models.WorkflowState) *models.WorkflowState {
	data, err := json.Marshal(s)
	if err != nil {
		// A WorkflowState is always JSON-serializable by construction; a
		// marshal failure here would indicate a programmer error, not a
		// runtime condition the caller can act on.
		panic("engine: workflow state is not serializable: " + err.Error())
	}
	var out models.WorkflowState
	if err := json.Unmarshal(data, &out); err != nil {
		panic("engine: workflow state round trip failed: " + err.Error())
	}
	return &out
}
