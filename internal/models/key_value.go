package models

import "time"

// KeyValueEntry is a single durable slot. The application keeps exactly one
// of these today: the obfuscated generative-service credential.
type KeyValueEntry struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (KeyValueEntry) TableName() string {
	return "key_values"
}
