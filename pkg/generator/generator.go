// Package generator implements the Code Generator component: produces a
// CodeArtifact seeded with a requested set of defects, composing
// pkg/catalog, pkg/prompt, pkg/respparse, and a single generative
// pkg/llm.Client — plain structs composing a one-method interface instead
// of a class hierarchy.
package generator

import (
	"context"
	"math/rand"
	"strings"

	"github.com/reviewloop/engine/pkg/catalog"
	"github.com/reviewloop/engine/pkg/llm"
	"github.com/reviewloop/engine/pkg/models"
	"github.com/reviewloop/engine/pkg/prompt"
	"github.com/reviewloop/engine/pkg/respparse"
)

// Domains is the fixed pool Generate samples from when no domain is
// supplied.
var Domains = []string{
	"user_management", "file_processing", "data_validation", "calculation",
	"inventory_system", "notification_service", "logging", "banking",
	"e-commerce", "student_management",
}

// Generator produces CodeArtifacts.
type Generator struct {
	Catalog catalog.Store
	Model   llm.Client
}

// New builds a Generator over a catalog store and the generative-role
// model client.
func New(store catalog.Store, model llm.Client) *Generator {
	return &Generator{Catalog: store, Model: model}
}

// Generate resolves a defect manifest, picks a domain if none was given,
// and invokes the generative client to produce a seeded CodeArtifact.
func (g *Generator) Generate(ctx context.Context, selection models.DefectSelection, length models.LengthBucket, difficulty models.Difficulty, locale models.Locale, domain string) (*models.CodeArtifact, error) {
	manifest, err := g.resolveManifest(ctx, selection, locale)
	if err != nil {
		return nil, err
	}

	if domain == "" {
		domain = Domains[rand.Intn(len(Domains))]
	}

	p := prompt.CodeGeneration(locale, length, difficulty, manifest, domain)
	return g.invokeAndBuild(ctx, p, manifest, domain, length, difficulty, "generate_code")
}

// Regenerate invokes the generative client with an already-built
// regeneration prompt, keeping the existing manifest rather than
// resampling one.
func (g *Generator) Regenerate(ctx context.Context, feedbackPrompt string, manifest []models.Defect, domain string, length models.LengthBucket, difficulty models.Difficulty) (*models.CodeArtifact, error) {
	return g.invokeAndBuild(ctx, feedbackPrompt, manifest, domain, length, difficulty, "regenerate_code")
}

func (g *Generator) invokeAndBuild(ctx context.Context, p string, manifest []models.Defect, domain string, length models.LengthBucket, difficulty models.Difficulty, node string) (*models.CodeArtifact, error) {
	text, err := g.Model.Invoke(ctx, p)
	if err != nil {
		return nil, &models.ModelError{Role: string(llm.RoleGenerative), Node: node, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &models.ModelError{Role: string(llm.RoleGenerative), Node: node, Err: models.ErrEmptyCompletion}
	}

	annotated, clean := respparse.ExtractCodeVariants(text)
	if strings.TrimSpace(annotated) == "" {
		return nil, &models.ModelError{Role: string(llm.RoleGenerative), Node: node, Err: models.ErrEmptyCompletion}
	}

	return &models.CodeArtifact{
		Annotated:     annotated,
		Clean:         clean,
		Manifest:      manifest,
		ExpectedCount: len(manifest),
		Domain:        domain,
		Length:        length,
		Difficulty:    difficulty,
	}, nil
}

func (g *Generator) resolveManifest(ctx context.Context, selection models.DefectSelection, locale models.Locale) ([]models.Defect, error) {
	if selection.IsExplicit() {
		manifest := make([]models.Defect, 0, len(selection.ExplicitDefects))
		for _, code := range selection.ExplicitDefects {
			d, err := g.Catalog.GetDefect(ctx, code, locale)
			if err != nil {
				return nil, err
			}
			manifest = append(manifest, *d)
		}
		return manifest, nil
	}
	return g.Catalog.SampleDefects(ctx, selection, locale)
}
