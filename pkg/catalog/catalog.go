// Package catalog defines the defect catalog store contract and an
// in-memory reference implementation: a read-mostly repository that also
// sinks usage telemetry on selection.
package catalog

import (
	"context"

	"github.com/reviewloop/engine/pkg/models"
)

// Store is the read-mostly defect catalog contract. Implementations must
// tolerate concurrent calls from distinct workflow instances; RecordUsage
// must never block the caller.
type Store interface {
	ListCategories(ctx context.Context, locale models.Locale) ([]models.DefectCategory, error)
	ListDefects(ctx context.Context, categoryCode string, locale models.Locale) ([]models.Defect, error)
	GetDefect(ctx context.Context, code string, locale models.Locale) (*models.Defect, error)
	SampleDefects(ctx context.Context, selection models.DefectSelection, locale models.Locale) ([]models.Defect, error)
	RecordUsage(defectCode string, actor string, action models.UsageAction, ctxInfo string)
}
