package models

// EvaluationResult is the verdict on whether an artifact realizes its
// manifest, produced per evaluation attempt. The latest supersedes all
// prior attempts for a given workflow.
type EvaluationResult struct {
	Found    []string `json:"found"`
	Missing  []string `json:"missing"`
	Valid    bool     `json:"valid"`
	Feedback string   `json:"feedback,omitempty"`
}

// Normalize enforces found/missing disjointness and completeness against
// manifest, recomputing Missing when the model's verdict was a proper
// subset or superset of the ground truth.
func (r *EvaluationResult) Normalize(manifestCodes []string) {
	foundSet := make(map[string]struct{}, len(r.Found))
	for _, c := range r.Found {
		foundSet[c] = struct{}{}
	}

	missing := make([]string, 0, len(manifestCodes))
	for _, c := range manifestCodes {
		if _, ok := foundSet[c]; !ok {
			missing = append(missing, c)
		}
	}
	r.Missing = missing
	r.Valid = len(missing) == 0
}
