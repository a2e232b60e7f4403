package domain

import (
	"time"

	"atelier/internal/core/id"
)

// WorkspaceRecord is the base for every workspace-scoped entity. Each record
// carries exactly one workspace id; the scoped repositories stamp it from the
// request context on insert, so a record can never be constructed without a
// resolvable workspace.
type WorkspaceRecord struct {
	ID          id.ID     `db:"id" json:"id"`
	WorkspaceID string    `db:"workspace_id" json:"workspaceId"`
	CreatedBy   string    `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
	Version     int       `db:"version" json:"version"`
}

// NewWorkspaceRecord initializes identity and timestamps. The workspace id is
// left empty on purpose: only the scoped repository may fill it.
func NewWorkspaceRecord() WorkspaceRecord {
	now := time.Now().UTC()
	return WorkspaceRecord{
		ID:        id.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}
