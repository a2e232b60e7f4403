// Package task provides project tasks and their scheduling fields.
package task

import (
	"context"
	"strings"
	"time"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain"
)

// Status is the task state.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is a unit of work within a project.
type Task struct {
	domain.WorkspaceRecord

	ProjectID  id.ID      `db:"project_id" json:"projectId"`
	Title      string     `db:"title" json:"title"`
	Status     Status     `db:"status" json:"status"`
	AssigneeID *string    `db:"assignee_id" json:"assigneeId,omitempty"`
	StartsOn   *time.Time `db:"starts_on" json:"startsOn,omitempty"`
	DueOn      *time.Time `db:"due_on" json:"dueOn,omitempty"`
}

// NewTask creates a task in todo state.
func NewTask(projectID id.ID, title string) *Task {
	return &Task{
		WorkspaceRecord: domain.NewWorkspaceRecord(),
		ProjectID:       projectID,
		Title:           title,
		Status:          StatusTodo,
	}
}

// Validate checks required fields and date ordering.
func (t *Task) Validate(ctx context.Context) error {
	if id.IsNil(t.ProjectID) {
		return apperror.NewValidation("task must belong to a project").
			WithDetail("field", "projectId")
	}
	if strings.TrimSpace(t.Title) == "" {
		return apperror.NewValidation("task title is required").
			WithDetail("field", "title")
	}
	if !t.Status.Valid() {
		return apperror.NewValidation("invalid task status").
			WithDetail("field", "status").
			WithDetail("value", string(t.Status))
	}
	if t.StartsOn != nil && t.DueOn != nil && t.DueOn.Before(*t.StartsOn) {
		return apperror.NewValidation("due date precedes start date").
			WithDetail("field", "dueOn")
	}
	return nil
}
