package catalog

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/reviewloop/engine/pkg/models"
)

// UsageEvent is one RecordUsage call captured by InMemoryStore for
// inspection in tests; the reference implementation does not persist it
// anywhere else.
type UsageEvent struct {
	DefectCode string
	Actor      string
	Action     models.UsageAction
	Context    string
}

// InMemoryStore is a read-mostly reference Store backed by plain maps,
// seeded wholesale at construction. It is the default Store for tests and
// for callers that have not wired internal/storage.
type InMemoryStore struct {
	mu         sync.RWMutex
	categories map[string]models.DefectCategory
	defects    map[string]models.Defect
	byCategory map[string][]string // categoryCode -> defect codes, seed order

	usageMu sync.Mutex
	usage   []UsageEvent
}

// NewInMemoryStore builds a store from a fixed set of categories and
// defects. Both must already carry unique, stable codes.
func NewInMemoryStore(categories []models.DefectCategory, defects []models.Defect) *InMemoryStore {
	s := &InMemoryStore{
		categories: make(map[string]models.DefectCategory, len(categories)),
		defects:    make(map[string]models.Defect, len(defects)),
		byCategory: make(map[string][]string),
	}
	for _, c := range categories {
		s.categories[c.Code] = c
	}
	for _, d := range defects {
		s.defects[d.Code] = d
		s.byCategory[d.CategoryCode] = append(s.byCategory[d.CategoryCode], d.Code)
	}
	return s
}

// ListCategories returns active categories ordered by SortOrder. The locale
// parameter is accepted for interface parity with storage-backed
// implementations that may project locale-specific columns; entities here
// always carry both locales and callers resolve display text via Pick.
func (s *InMemoryStore) ListCategories(_ context.Context, _ models.Locale) ([]models.DefectCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DefectCategory, 0, len(s.categories))
	for _, c := range s.categories {
		if c.Active {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// ListDefects returns active defects belonging to categoryCode. The owning
// category must itself be active for any of its defects to surface.
func (s *InMemoryStore) ListDefects(_ context.Context, categoryCode string, _ models.Locale) ([]models.Defect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cat, ok := s.categories[categoryCode]
	if !ok || !cat.Active {
		return nil, nil
	}
	codes := s.byCategory[categoryCode]
	out := make([]models.Defect, 0, len(codes))
	for _, code := range codes {
		out = append(out, s.defects[code])
	}
	return out, nil
}

// GetDefect looks up a single defect by stable code.
func (s *InMemoryStore) GetDefect(_ context.Context, code string, _ models.Locale) (*models.Defect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.defects[code]
	if !ok {
		return nil, models.ErrDefectNotFound
	}
	return &d, nil
}

// difficultyAdjustedTotal adjusts the requested defect count by difficulty:
// easy lowers it by 2 (never below 2), hard raises it by 2, medium passes
// it through unchanged.
func difficultyAdjustedTotal(count int, difficulty models.Difficulty) int {
	switch difficulty {
	case models.DifficultyEasy:
		adjusted := count - 2
		if adjusted < 2 {
			adjusted = 2
		}
		return adjusted
	case models.DifficultyHard:
		return count + 2
	default:
		return count
	}
}

// perCategoryDrawBound returns K, the upper bound (inclusive) of a single
// category's draw.
func perCategoryDrawBound(difficulty models.Difficulty) int {
	switch difficulty {
	case models.DifficultyEasy:
		return 2
	case models.DifficultyHard:
		return 4
	default:
		return 3
	}
}

// SampleDefects draws a pseudo-random subset of defects for a category-based
// DefectSelection. Explicit selections must be resolved by the caller via
// GetDefect; this method only handles the category/count/difficulty path.
// Difficulty affects only the adjusted target count and the per-category
// draw bound (spec §4.1); candidates are drawn from all of a category's
// defects regardless of their own difficulty, matching the original's
// `ORDER BY RAND() LIMIT` draw over a category's full defect pool.
func (s *InMemoryStore) SampleDefects(_ context.Context, selection models.DefectSelection, locale models.Locale) ([]models.Defect, error) {
	if selection.IsExplicit() {
		return nil, &models.ValidationError{Field: "selection", Message: "SampleDefects requires a category-based selection"}
	}
	if err := selection.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	target := difficultyAdjustedTotal(selection.Count, selection.Difficulty)
	bound := perCategoryDrawBound(selection.Difficulty)

	categoryCodes := make([]string, len(selection.CategoryCodes))
	copy(categoryCodes, selection.CategoryCodes)
	sort.Strings(categoryCodes)

	out := make([]models.Defect, 0, target)
	for _, catCode := range categoryCodes {
		if len(out) >= target {
			break
		}
		cat, ok := s.categories[catCode]
		if !ok || !cat.Active {
			continue
		}
		candidates := append([]string(nil), s.byCategory[catCode]...)
		if len(candidates) == 0 {
			continue
		}

		k := 1
		if bound > 1 {
			k = 1 + rand.Intn(bound)
		}
		if k > len(candidates) {
			k = len(candidates)
		}
		if remaining := target - len(out); k > remaining {
			k = remaining
		}

		rand.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
		for _, code := range candidates[:k] {
			out = append(out, s.defects[code])
		}
	}
	return out, nil
}

// RecordUsage appends a best-effort telemetry event. It never returns an
// error and never blocks the caller beyond a brief mutex hold.
func (s *InMemoryStore) RecordUsage(defectCode string, actor string, action models.UsageAction, ctxInfo string) {
	s.usageMu.Lock()
	defer s.usageMu.Unlock()
	s.usage = append(s.usage, UsageEvent{DefectCode: defectCode, Actor: actor, Action: action, Context: ctxInfo})

	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.defects[defectCode]; ok {
		d.UsageCount++
		s.defects[defectCode] = d
	}
}

// UsageEvents returns a copy of recorded telemetry, for test assertions.
func (s *InMemoryStore) UsageEvents() []UsageEvent {
	s.usageMu.Lock()
	defer s.usageMu.Unlock()
	out := make([]UsageEvent, len(s.usage))
	copy(out, s.usage)
	return out
}
