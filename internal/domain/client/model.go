// Package client provides the client roster: the people and companies a firm
// designs for.
package client

import (
	"context"
	"strings"

	"atelier/internal/core/apperror"
	"atelier/internal/domain"
)

// Client is a customer of the workspace's firm.
type Client struct {
	domain.WorkspaceRecord

	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email,omitempty"`
	Phone    string `db:"phone" json:"phone,omitempty"`
	Company  string `db:"company" json:"company,omitempty"`
	Archived bool   `db:"archived" json:"archived"`
}

// NewClient creates a client with required fields.
func NewClient(name string) *Client {
	return &Client{
		WorkspaceRecord: domain.NewWorkspaceRecord(),
		Name:            name,
	}
}

// Validate checks required fields.
func (c *Client) Validate(ctx context.Context) error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.NewValidation("client name is required").
			WithDetail("field", "name")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return apperror.NewValidation("invalid email address").
			WithDetail("field", "email")
	}
	return nil
}
