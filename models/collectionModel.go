package models

import (
	"time"

	"gorm.io/datatypes"
)

// RecordCollection is the Postgres row holding one whole collection.
type RecordCollection struct {
	Name      string         `gorm:"primaryKey;size:64;column:name"`
	Records   datatypes.JSON `gorm:"type:jsonb;not null;column:records"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime;column:updated_at"`
}

func (RecordCollection) TableName() string {
	return "record_collections"
}
