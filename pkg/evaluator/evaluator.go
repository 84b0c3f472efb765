// Package evaluator implements the Code Evaluator component: verifies a
// CodeArtifact realizes its manifest and, on failure, synthesizes the
// regeneration feedback the engine hands to the next generate turn.
package evaluator

import (
	"context"

	"github.com/reviewloop/engine/pkg/llm"
	"github.com/reviewloop/engine/pkg/models"
	"github.com/reviewloop/engine/pkg/prompt"
	"github.com/reviewloop/engine/pkg/respparse"
)

// Evaluator verifies artifacts against their manifest.
type Evaluator struct {
	Model llm.Client
}

// New builds an Evaluator over the review-role model client.
func New(model llm.Client) *Evaluator {
	return &Evaluator{Model: model}
}

// Evaluate verifies an artifact against its manifest and reports any
// missing defects.
func (e *Evaluator) Evaluate(ctx context.Context, artifact *models.CodeArtifact, locale models.Locale) models.EvaluationResult {
	p := prompt.Evaluation(locale, artifact.Annotated, artifact.Manifest)
	text, err := e.Model.Invoke(ctx, p)
	if err != nil {
		return parseFailureResult(artifact)
	}

	parsed := respparse.ParseJSON(text, "evaluation")
	if parsed.Err != nil {
		return parseFailureResult(artifact)
	}

	result := respparse.EvaluationVerdict(parsed)
	result.Normalize(artifact.ManifestCodes())
	return result
}

func parseFailureResult(artifact *models.CodeArtifact) models.EvaluationResult {
	return models.EvaluationResult{
		Found:    []string{},
		Missing:  artifact.ManifestCodes(),
		Valid:    false,
		Feedback: "evaluation parse failed",
	}
}

// BuildRegenerationFeedback synthesizes the regeneration prompt for the
// engine to hand to the generative client on the next turn.
func (e *Evaluator) BuildRegenerationFeedback(artifact *models.CodeArtifact, evaluation models.EvaluationResult, locale models.Locale) string {
	missingSet := make(map[string]struct{}, len(evaluation.Missing))
	for _, code := range evaluation.Missing {
		missingSet[code] = struct{}{}
	}

	missing := make([]models.Defect, 0, len(evaluation.Missing))
	for _, d := range artifact.Manifest {
		if _, ok := missingSet[d.Code]; ok {
			missing = append(missing, d)
		}
	}

	return prompt.Regeneration(locale, artifact.Annotated, artifact.Domain, missing, evaluation.Found, artifact.Manifest)
}
