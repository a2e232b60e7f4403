// Package domain holds types shared by the domain services.
package domain

// ListFilter carries common list parameters.
type ListFilter struct {
	// Search matches against the entity's display fields (ILIKE).
	Search string

	// IncludeArchived includes archived records.
	IncludeArchived bool

	Limit  int
	Offset int
}

// Normalize applies pagination defaults and caps.
func (f *ListFilter) Normalize() {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 500 {
		f.Limit = 500
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
}

// ListResult is a paginated result set.
type ListResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}
