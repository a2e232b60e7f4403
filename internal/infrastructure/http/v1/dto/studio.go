package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// --- Projects ---

// CreateProjectRequest for creating projects.
type CreateProjectRequest struct {
	Name     string          `json:"name" binding:"required"`
	ClientID *string         `json:"clientId"`
	Budget   decimal.Decimal `json:"budget"`
	Notes    string          `json:"notes"`
}

// UpdateProjectRequest for updating projects.
type UpdateProjectRequest struct {
	Name     string          `json:"name" binding:"required"`
	ClientID *string         `json:"clientId"`
	Status   string          `json:"status" binding:"required"`
	Budget   decimal.Decimal `json:"budget"`
	Notes    string          `json:"notes"`
	Version  int             `json:"version" binding:"required,min=1"`
}

// --- Clients ---

// CreateClientRequest for creating clients.
type CreateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
}

// UpdateClientRequest for updating clients.
type UpdateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Version int    `json:"version" binding:"required,min=1"`
}

// --- Tasks ---

// CreateTaskRequest for creating tasks.
type CreateTaskRequest struct {
	Title      string     `json:"title" binding:"required"`
	AssigneeID *string    `json:"assigneeId"`
	StartsOn   *time.Time `json:"startsOn"`
	DueOn      *time.Time `json:"dueOn"`
}

// UpdateTaskRequest for updating tasks.
type UpdateTaskRequest struct {
	Title      string     `json:"title" binding:"required"`
	Status     string     `json:"status" binding:"required"`
	AssigneeID *string    `json:"assigneeId"`
	StartsOn   *time.Time `json:"startsOn"`
	DueOn      *time.Time `json:"dueOn"`
	Version    int        `json:"version" binding:"required,min=1"`
}
