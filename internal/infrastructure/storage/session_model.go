package storage

import (
	"time"

	"github.com/uptrace/bun"
)

// SessionModel persists one WorkflowState snapshot, keyed by workflow ID, so
// a host process can suspend and resume a workflow across restarts. The
// state itself is stored as its JSON serialization — WorkflowState's
// serialization contract (see pkg/models/workflowstate.go) guarantees a
// faithful round trip.
type SessionModel struct {
	bun.BaseModel `bun:"table:workflow_sessions,alias:ws"`

	WorkflowID string    `bun:"workflow_id,pk" json:"workflow_id"`
	State      []byte    `bun:"state,type:jsonb,notnull" json:"state"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// BeforeInsert sets row timestamps.
func (s *SessionModel) BeforeInsert(ctx interface{}) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the update timestamp.
func (s *SessionModel) BeforeUpdate(ctx interface{}) error {
	s.UpdatedAt = time.Now()
	return nil
}
