package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/reviewloop/engine/pkg/models"
)

// ErrSessionNotFound is returned by SessionStore.Load when no snapshot is
// on record for a workflow ID.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists WorkflowState snapshots so a host process can
// suspend at any node boundary (generation, review, etc.) and resume after
// a restart, per SPEC_FULL's workflow session persistence requirement.
type SessionStore struct {
	db *bun.DB
}

// NewSessionStore builds a SessionStore over an established bun connection.
func NewSessionStore(db *bun.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save upserts the full serialized state for state.WorkflowID.
func (s *SessionStore) Save(ctx context.Context, state *models.WorkflowState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal workflow state: %w", err)
	}

	row := &SessionModel{WorkflowID: state.WorkflowID, State: data}
	_, err = s.db.NewInsert().Model(row).
		On("CONFLICT (workflow_id) DO UPDATE").
		Set("state = EXCLUDED.state").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save session %s: %w", state.WorkflowID, err)
	}
	return nil
}

// Load restores the most recently saved state for workflowID.
func (s *SessionStore) Load(ctx context.Context, workflowID string) (*models.WorkflowState, error) {
	var row SessionModel
	err := s.db.NewSelect().Model(&row).Where("workflow_id = ?", workflowID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", workflowID, err)
	}

	var state models.WorkflowState
	if err := json.Unmarshal(row.State, &state); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", workflowID, err)
	}
	return &state, nil
}

// Delete removes a workflow's persisted snapshot, e.g. once it reaches a
// terminal step and no longer needs to be resumable.
func (s *SessionStore) Delete(ctx context.Context, workflowID string) error {
	_, err := s.db.NewDelete().Model((*SessionModel)(nil)).Where("workflow_id = ?", workflowID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", workflowID, err)
	}
	return nil
}
