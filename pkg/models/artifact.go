package models

// LengthBucket classifies the structural size of a generated artifact.
type LengthBucket string

const (
	LengthShort  LengthBucket = "short"
	LengthMedium LengthBucket = "medium"
	LengthLong   LengthBucket = "long"
)

// CodeArtifact is a model-produced source file seeded with a known set of
// defects. Clean is derivable from Annotated by stripping marker comments;
// the engine never mutates an artifact in place, it replaces it wholesale.
type CodeArtifact struct {
	Annotated     string       `json:"annotated"`
	Clean         string       `json:"clean"`
	Manifest      []Defect     `json:"manifest"`
	ExpectedCount int          `json:"expected_count"`
	Domain        string       `json:"domain"`
	Length        LengthBucket `json:"length"`
	Difficulty    Difficulty   `json:"difficulty"`
}

// ManifestCodes returns the stable codes of every defect in the manifest,
// in manifest order.
func (a CodeArtifact) ManifestCodes() []string {
	codes := make([]string, len(a.Manifest))
	for i, d := range a.Manifest {
		codes[i] = d.Code
	}
	return codes
}
