package models

import "time"

// StorageEntry model - PostgreSQL (one persisted key-value blob)
type StorageEntry struct {
	Key       string    `gorm:"column:storage_key;primaryKey" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StorageEntry) TableName() string {
	return "storage_entries"
}

// StorageDocument model - MongoDB (one persisted key-value blob)
type StorageDocument struct {
	Key       string    `bson:"_id" json:"key"`
	Value     string    `bson:"value" json:"value"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
