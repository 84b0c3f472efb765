package storage

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/reviewloop/engine/pkg/models"
)

// DefectCategoryModel represents a row of the defect category table.
type DefectCategoryModel struct {
	bun.BaseModel `bun:"table:defect_categories,alias:dc"`

	Code      string    `bun:"code,pk" json:"code"`
	NameEN    string    `bun:"name_en,notnull" json:"name_en"`
	NameZH    string    `bun:"name_zh,notnull" json:"name_zh"`
	SortOrder int       `bun:"sort_order,notnull,default:0" json:"sort_order"`
	Active    bool      `bun:"active,notnull,default:true" json:"active"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// BeforeInsert sets row timestamps.
func (c *DefectCategoryModel) BeforeInsert(ctx interface{}) error {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the update timestamp.
func (c *DefectCategoryModel) BeforeUpdate(ctx interface{}) error {
	c.UpdatedAt = time.Now()
	return nil
}

// ToDomain converts the row into the catalog's domain type.
func (c *DefectCategoryModel) ToDomain() models.DefectCategory {
	return models.DefectCategory{
		Code:      c.Code,
		Name:      models.Localized{EN: c.NameEN, ZH: c.NameZH},
		SortOrder: c.SortOrder,
		Active:    c.Active,
	}
}

// DefectModel represents a row of the defect table.
type DefectModel struct {
	bun.BaseModel `bun:"table:defects,alias:d"`

	Code                 string    `bun:"code,pk" json:"code"`
	CategoryCode         string    `bun:"category_code,notnull" json:"category_code"`
	NameEN               string    `bun:"name_en,notnull" json:"name_en"`
	NameZH               string    `bun:"name_zh,notnull" json:"name_zh"`
	DescriptionEN        string    `bun:"description_en,notnull" json:"description_en"`
	DescriptionZH        string    `bun:"description_zh,notnull" json:"description_zh"`
	ImplementationGuideEN string   `bun:"implementation_guide_en" json:"implementation_guide_en"`
	ImplementationGuideZH string   `bun:"implementation_guide_zh" json:"implementation_guide_zh"`
	Difficulty           string    `bun:"difficulty,notnull" json:"difficulty"`
	UsageCount           int       `bun:"usage_count,notnull,default:0" json:"usage_count"`
	CreatedAt            time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt            time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	Category *DefectCategoryModel `bun:"rel:belongs-to,join:category_code=code" json:"category,omitempty"`
}

// BeforeInsert sets row timestamps.
func (d *DefectModel) BeforeInsert(ctx interface{}) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the update timestamp.
func (d *DefectModel) BeforeUpdate(ctx interface{}) error {
	d.UpdatedAt = time.Now()
	return nil
}

// ToDomain converts the row into the catalog's domain type.
func (d *DefectModel) ToDomain() models.Defect {
	return models.Defect{
		Code:                 d.Code,
		CategoryCode:         d.CategoryCode,
		Name:                 models.Localized{EN: d.NameEN, ZH: d.NameZH},
		Description:          models.Localized{EN: d.DescriptionEN, ZH: d.DescriptionZH},
		ImplementationGuide:  models.Localized{EN: d.ImplementationGuideEN, ZH: d.ImplementationGuideZH},
		Difficulty:           models.Difficulty(d.Difficulty),
		UsageCount:           int64(d.UsageCount),
	}
}

// UsageEventModel records one selection of a defect into a generated artifact.
// It backs the best-effort usage telemetry the catalog exposes through RecordUsage.
type UsageEventModel struct {
	bun.BaseModel `bun:"table:defect_usage_events,alias:ue"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	DefectCode string    `bun:"defect_code,notnull" json:"defect_code"`
	WorkflowID string    `bun:"workflow_id,notnull" json:"workflow_id"`
	RecordedAt time.Time `bun:"recorded_at,notnull,default:current_timestamp" json:"recorded_at"`
}

// BeforeInsert sets the recorded timestamp.
func (e *UsageEventModel) BeforeInsert(ctx interface{}) error {
	e.RecordedAt = time.Now()
	return nil
}
