package models

import (
	"time"

	"gorm.io/datatypes"
)

// StoredDocument is a schemaless document row. Every protocol collection
// (drzwi, drzwi_wejsciowe, podlogi, wymiary_draft) shares this table,
// discriminated by the Collection column; the domain payload lives in JSONB.
type StoredDocument struct {
	ID         string         `gorm:"column:document_id;primaryKey;type:uuid" json:"documentId"`
	Collection string         `gorm:"column:collection;not null;index" json:"collection"`
	Payload    datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`

	CreatedAt time.Time `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName specifies the table name
func (StoredDocument) TableName() string {
	return "documents"
}
