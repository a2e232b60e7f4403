package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"atelier/internal/core/id"
	"atelier/internal/domain"
)

type mockScopedEntity struct {
	domain.WorkspaceRecord
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

func TestExtractDBColumns_EmbeddedRecord(t *testing.T) {
	cols := ExtractDBColumns[mockScopedEntity]()

	expectedCols := []string{
		"id", "workspace_id", "created_by", "created_at", "updated_at", "version", "code", "name",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestExtractDBColumns_PointerTarget(t *testing.T) {
	assert.Equal(t, ExtractDBColumns[mockScopedEntity](), ExtractDBColumns[*mockScopedEntity]())
}

func TestStructToMap_EmbeddedRecord(t *testing.T) {
	now := time.Now().UTC()
	ent := mockScopedEntity{
		WorkspaceRecord: domain.WorkspaceRecord{
			ID:          id.New(),
			WorkspaceID: "ws-1",
			CreatedBy:   "user-1",
			CreatedAt:   now,
			Version:     5,
		},
		Code: "SOFA-01",
		Name: "Living Room Sofa",
	}

	m := StructToMap(ent)

	assert.Equal(t, ent.ID, m["id"])
	assert.Equal(t, "ws-1", m["workspace_id"])
	assert.Equal(t, "user-1", m["created_by"])
	assert.Equal(t, now, m["created_at"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "SOFA-01", m["code"])
	assert.Equal(t, "Living Room Sofa", m["name"])
}
