package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tooldesk/tooldesk/backend/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const snapshotRowID = 1

// GormPersister keeps the snapshot as one JSONB row. The row is rewritten in
// full on every Save, same as the file backend.
type GormPersister struct {
	db *gorm.DB
}

func NewGormPersister(db *gorm.DB) *GormPersister {
	return &GormPersister{db}
}

// Migrate creates the snapshot table when missing.
func (p *GormPersister) Migrate() error {
	return p.db.AutoMigrate(&models.StoreSnapshot{})
}

func (p *GormPersister) Load(ctx context.Context) (*Snapshot, error) {
	var row models.StoreSnapshot
	err := p.db.WithContext(ctx).First(&row, snapshotRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot row: %w", err)
	}
	return decodeSnapshot(row.Payload)
}

func (p *GormPersister) Save(ctx context.Context, snapshot *Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	row := models.StoreSnapshot{ID: snapshotRowID, Payload: datatypes.JSON(payload)}
	if err := p.db.WithContext(ctx).Save(&row).Error; err != nil {
		return fmt.Errorf("save snapshot row: %w", err)
	}
	return nil
}
