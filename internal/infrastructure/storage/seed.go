package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/uptrace/bun"

	"github.com/reviewloop/engine/pkg/models"
)

// SeedDefect is one defect entry of a single-locale SeedDocument. An empty
// Difficulty is ingested as medium.
type SeedDefect struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	ImplementationGuide string `json:"implementation_guide"`
	Difficulty          string `json:"difficulty"`
}

// SeedDocument is `{categoryDisplayName -> [defect]}` for a single locale.
type SeedDocument map[string][]SeedDefect

// categoryCodeOf derives the stable code for an English category display
// name: lowercase, spaces replaced with underscores.
func categoryCodeOf(categoryNameEN string) string {
	return strings.ReplaceAll(strings.ToLower(categoryNameEN), " ", "_")
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// slug lowercases a defect name and keeps only alphanumerics and
// underscores, per spec §6's error_code derivation.
func slug(name string) string {
	lowered := strings.ToLower(name)
	return strings.Trim(slugPattern.ReplaceAllString(lowered, "_"), "_")
}

// categoryMapping is the fixed English<->Chinese category name mapping
// from spec §6.
var categoryMapping = map[string]string{
	"Logical":            "邏輯錯誤",
	"Syntax":             "語法錯誤",
	"Code Quality":       "程式碼品質",
	"Standard Violation": "標準違規",
	"Java Specific":      "Java 特定錯誤",
}

// LoadSeedFile reads and parses a single-locale seed document from disk.
func LoadSeedFile(path string) (SeedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}
	var doc SeedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return doc, nil
}

// IngestSeed merges the English and Chinese seed documents into the
// defect_categories and defects tables. Both documents must name the same
// categories, keyed by their own locale's display name and reconciled via
// categoryMapping.
func IngestSeed(ctx context.Context, db *bun.DB, en, zh SeedDocument) error {
	categoryNamesEN := make([]string, 0, len(en))
	for nameEN := range en {
		categoryNamesEN = append(categoryNamesEN, nameEN)
	}
	sort.Strings(categoryNamesEN)

	return WithTransaction(ctx, db, func(tx bun.Tx) error {
		for sortOrder, nameEN := range categoryNamesEN {
			nameZH, ok := categoryMapping[nameEN]
			if !ok {
				return fmt.Errorf("no Chinese mapping for category %q", nameEN)
			}
			code := categoryCodeOf(nameEN)

			cat := &DefectCategoryModel{
				Code:      code,
				NameEN:    nameEN,
				NameZH:    nameZH,
				SortOrder: sortOrder,
				Active:    true,
			}
			if _, err := tx.NewInsert().Model(cat).
				On("CONFLICT (code) DO UPDATE").
				Set("name_en = EXCLUDED.name_en").
				Set("name_zh = EXCLUDED.name_zh").
				Set("sort_order = EXCLUDED.sort_order").
				Exec(ctx); err != nil {
				return fmt.Errorf("upsert category %s: %w", code, err)
			}

			defectsEN := en[nameEN]
			defectsZH := zh[nameZH]
			if len(defectsEN) != len(defectsZH) {
				return fmt.Errorf("category %q: locale defect counts disagree (en=%d zh=%d)", nameEN, len(defectsEN), len(defectsZH))
			}

			for i, dEN := range defectsEN {
				dZH := defectsZH[i]
				difficulty := dEN.Difficulty
				if difficulty == "" {
					difficulty = string(models.DifficultyMedium)
				}
				errorCode := code + "_" + slug(dEN.Name)

				defect := &DefectModel{
					Code:                  errorCode,
					CategoryCode:          code,
					NameEN:                dEN.Name,
					NameZH:                dZH.Name,
					DescriptionEN:         dEN.Description,
					DescriptionZH:         dZH.Description,
					ImplementationGuideEN: dEN.ImplementationGuide,
					ImplementationGuideZH: dZH.ImplementationGuide,
					Difficulty:            difficulty,
				}
				if _, err := tx.NewInsert().Model(defect).
					On("CONFLICT (code) DO UPDATE").
					Set("name_en = EXCLUDED.name_en").
					Set("name_zh = EXCLUDED.name_zh").
					Set("description_en = EXCLUDED.description_en").
					Set("description_zh = EXCLUDED.description_zh").
					Set("implementation_guide_en = EXCLUDED.implementation_guide_en").
					Set("implementation_guide_zh = EXCLUDED.implementation_guide_zh").
					Set("difficulty = EXCLUDED.difficulty").
					Exec(ctx); err != nil {
					return fmt.Errorf("upsert defect %s: %w", errorCode, err)
				}
			}
		}
		return nil
	})
}
