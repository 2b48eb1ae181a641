package repositories

import (
	"context"
	"errors"
	"time"

	"rocketshoes-cart/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type postgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) KeyValueStore {
	return &postgresStore{db: db}
}

func (r *postgresStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var entry models.StorageEntry
	err := r.db.WithContext(ctx).Where("storage_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (r *postgresStore) SetItem(ctx context.Context, key, value string) error {
	entry := models.StorageEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}
