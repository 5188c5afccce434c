package models

import (
	"time"

	"gorm.io/datatypes"
)

// StoreSnapshot is the single row holding the serialized record store when the
// Postgres backend is used.
type StoreSnapshot struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	UpdatedAt time.Time      `json:"updatedAt" gorm:"type:timestamptz;not null"`
}
