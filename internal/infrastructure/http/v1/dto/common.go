// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"atelier/internal/core/id"
	"atelier/internal/domain"
)

// ListQuery contains common list parameters.
type ListQuery struct {
	Search          string `form:"search"`
	IncludeArchived bool   `form:"includeArchived"`
	Limit           int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset          int    `form:"offset" binding:"omitempty,min=0"`
}

// Filter converts the query to a domain list filter.
func (q ListQuery) Filter() domain.ListFilter {
	f := domain.ListFilter{
		Search:          q.Search,
		IncludeArchived: q.IncludeArchived,
		Limit:           q.Limit,
		Offset:          q.Offset,
	}
	f.Normalize()
	return f
}

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int   `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// FromListResult builds a ListResponse from a domain list result.
func FromListResult[T any](r domain.ListResult[T]) ListResponse {
	return ListResponse{
		Items:      r.Items,
		TotalCount: r.TotalCount,
		Limit:      r.Limit,
		Offset:     r.Offset,
	}
}

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates an ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
