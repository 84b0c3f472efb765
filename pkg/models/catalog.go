package models

// Difficulty ranks the pedagogical weight of a single defect.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// UsageAction enumerates the telemetry events RecordUsage accepts.
type UsageAction string

const (
	UsageViewed    UsageAction = "viewed"
	UsagePracticed UsageAction = "practiced"
	UsageMastered  UsageAction = "mastered"
	UsageFailed    UsageAction = "failed"
)

// DefectCategory groups related defects. Code is the stable, immutable
// identifier derived at seed time; Name carries the bilingual display label.
type DefectCategory struct {
	Code      string    `json:"code"`
	Name      Localized `json:"name"`
	SortOrder int       `json:"sort_order"`
	Active    bool      `json:"active"`
}

// Defect is a single pedagogical defect a generated artifact may be seeded
// with.
type Defect struct {
	Code                string     `json:"code"`
	CategoryCode        string     `json:"category_code"`
	Name                Localized  `json:"name"`
	Description         Localized  `json:"description"`
	ImplementationGuide Localized  `json:"implementation_guide"`
	Difficulty          Difficulty `json:"difficulty"`
	UsageCount          int64      `json:"usage_count"`
}

// DefectSelection is the set of defects chosen for one generation. Either
// ExplicitDefects or the category-based fields is populated; a non-empty
// ExplicitDefects takes precedence and the category fields are then ignored.
type DefectSelection struct {
	ExplicitDefects []string   `json:"explicit_defects,omitempty"`
	CategoryCodes   []string   `json:"category_codes,omitempty"`
	Count           int        `json:"count,omitempty"`
	Difficulty      Difficulty `json:"difficulty,omitempty"`
}

// IsExplicit reports whether the selection names concrete defects rather
// than a category/count/difficulty sampling request.
func (s DefectSelection) IsExplicit() bool {
	return len(s.ExplicitDefects) > 0
}

// Validate enforces the "never both empty" invariant from the data model:
// either an explicit defect list or a category-based request must be given.
func (s DefectSelection) Validate() error {
	if s.IsExplicit() {
		return nil
	}
	if len(s.CategoryCodes) == 0 {
		return &ValidationError{Field: "selection", Message: "either explicit defects or category codes must be set"}
	}
	if s.Count < 1 || s.Count > 10 {
		return &ValidationError{Field: "selection.count", Message: "count must be in [1, 10] for category-based selection"}
	}
	switch s.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return &ValidationError{Field: "selection.difficulty", Message: "difficulty must be easy, medium, or hard"}
	}
	return nil
}

// ResolvedCount returns the count implied by this selection: len(explicit
// list) when explicit, otherwise the requested count.
func (s DefectSelection) ResolvedCount() int {
	if s.IsExplicit() {
		return len(s.ExplicitDefects)
	}
	return s.Count
}
