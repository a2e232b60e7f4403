// Package project provides the project ledger: a firm's design engagements
// with budgets and lifecycle state.
package project

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"atelier/internal/core/apperror"
	"atelier/internal/core/id"
	"atelier/internal/domain"
)

// Status is the project lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusOnHold, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// Project is a design engagement within a workspace.
type Project struct {
	domain.WorkspaceRecord

	Name     string          `db:"name" json:"name"`
	ClientID *id.ID          `db:"client_id" json:"clientId,omitempty"`
	Status   Status          `db:"status" json:"status"`
	Budget   decimal.Decimal `db:"budget" json:"budget"`
	Notes    string          `db:"notes" json:"notes,omitempty"`
}

// NewProject creates an active project with required fields.
func NewProject(name string) *Project {
	return &Project{
		WorkspaceRecord: domain.NewWorkspaceRecord(),
		Name:            name,
		Status:          StatusActive,
		Budget:          decimal.Zero,
	}
}

// Validate checks required fields and enum values.
func (p *Project) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("project name is required").
			WithDetail("field", "name")
	}
	if !p.Status.Valid() {
		return apperror.NewValidation("invalid project status").
			WithDetail("field", "status").
			WithDetail("value", string(p.Status))
	}
	if p.Budget.IsNegative() {
		return apperror.NewValidation("budget cannot be negative").
			WithDetail("field", "budget")
	}
	return nil
}
