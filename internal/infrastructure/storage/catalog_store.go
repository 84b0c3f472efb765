package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/uptrace/bun"

	"github.com/reviewloop/engine/pkg/models"
)

// TelemetrySink receives best-effort usage events. RecordUsage must never
// block its caller on it; PostgresCatalogStore only ever calls it from a
// detached goroutine.
type TelemetrySink interface {
	Enqueue(ctx context.Context, key string, value string) error
}

// PostgresCatalogStore is a bun-backed implementation of catalog.Store. It
// mirrors the in-memory reference's sampling rules exactly, resolving
// category lookups with SQL instead of an in-process map; difficulty only
// sets the draw sizes, it does not filter candidates.
type PostgresCatalogStore struct {
	db   *bun.DB
	sink TelemetrySink
}

// NewPostgresCatalogStore builds a catalog store over an established bun
// connection. sink may be nil, in which case usage events are persisted to
// the defect_usage_events table only.
func NewPostgresCatalogStore(db *bun.DB, sink TelemetrySink) *PostgresCatalogStore {
	return &PostgresCatalogStore{db: db, sink: sink}
}

// ListCategories returns active categories ordered by SortOrder.
func (s *PostgresCatalogStore) ListCategories(ctx context.Context, _ models.Locale) ([]models.DefectCategory, error) {
	var rows []DefectCategoryModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("active = ?", true).
		OrderExpr("sort_order ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.DefectCategory, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDomain())
	}
	return out, nil
}

// ListDefects returns active defects belonging to categoryCode.
func (s *PostgresCatalogStore) ListDefects(ctx context.Context, categoryCode string, _ models.Locale) ([]models.Defect, error) {
	var cat DefectCategoryModel
	err := s.db.NewSelect().Model(&cat).Where("code = ?", categoryCode).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) || !cat.Active {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rows []DefectModel
	if err := s.db.NewSelect().Model(&rows).Where("category_code = ?", categoryCode).Scan(ctx); err != nil {
		return nil, err
	}

	out := make([]models.Defect, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToDomain())
	}
	return out, nil
}

// GetDefect looks up a single defect by stable code.
func (s *PostgresCatalogStore) GetDefect(ctx context.Context, code string, _ models.Locale) (*models.Defect, error) {
	var row DefectModel
	err := s.db.NewSelect().Model(&row).Where("code = ?", code).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrDefectNotFound
	}
	if err != nil {
		return nil, err
	}
	d := row.ToDomain()
	return &d, nil
}

// SampleDefects draws a pseudo-random subset of defects for a category-based
// DefectSelection, using the same difficulty-adjusted bounds as the
// in-memory reference store. Difficulty affects only the adjusted target
// count and the per-category draw bound; candidates are drawn from all of a
// category's defects regardless of their own difficulty, matching the
// original's `ORDER BY RAND() LIMIT` draw over a category's full pool.
func (s *PostgresCatalogStore) SampleDefects(ctx context.Context, selection models.DefectSelection, _ models.Locale) ([]models.Defect, error) {
	if selection.IsExplicit() {
		return nil, &models.ValidationError{Field: "selection", Message: "SampleDefects requires a category-based selection"}
	}
	if err := selection.Validate(); err != nil {
		return nil, err
	}

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

		var cat DefectCategoryModel
		err := s.db.NewSelect().Model(&cat).Where("code = ?", catCode).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) || !cat.Active {
			continue
		}
		if err != nil {
			return nil, err
		}

		var rows []DefectModel
		err = s.db.NewSelect().Model(&rows).
			Where("category_code = ?", catCode).
			Scan(ctx)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}

		k := 1
		if bound > 1 {
			k = 1 + rand.Intn(bound)
		}
		if k > len(rows) {
			k = len(rows)
		}
		if remaining := target - len(out); k > remaining {
			k = remaining
		}

		rand.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		for _, r := range rows[:k] {
			out = append(out, r.ToDomain())
		}
	}
	return out, nil
}

// difficultyAdjustedTotal mirrors catalog.InMemoryStore's adjustment: easy
// lowers the count by 2 (never below 2), hard raises it by 2, medium passes
// through.
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

// perCategoryDrawBound mirrors catalog.InMemoryStore's per-category draw cap.
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

// RecordUsage persists a usage event and bumps the defect's usage counter.
// Both the database write and the optional telemetry sink enqueue happen on
// a detached goroutine so the caller is never blocked.
func (s *PostgresCatalogStore) RecordUsage(defectCode string, actor string, action models.UsageAction, ctxInfo string) {
	go func() {
		ctx := context.Background()

		event := &UsageEventModel{DefectCode: defectCode, WorkflowID: ctxInfo}
		if _, err := s.db.NewInsert().Model(event).Exec(ctx); err != nil {
			slog.Warn("failed to persist usage event", slog.String("defect_code", defectCode), slog.Any("error", err))
		}

		if _, err := s.db.NewUpdate().Model((*DefectModel)(nil)).
			Set("usage_count = usage_count + 1").
			Where("code = ?", defectCode).
			Exec(ctx); err != nil {
			slog.Warn("failed to bump usage count", slog.String("defect_code", defectCode), slog.Any("error", err))
		}

		if s.sink != nil {
			if err := s.sink.Enqueue(ctx, defectCode, string(action)); err != nil {
				slog.Warn("failed to enqueue usage telemetry", slog.String("defect_code", defectCode), slog.Any("error", err))
			}
		}
	}()
}
