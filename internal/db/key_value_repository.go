package db

import (
	"errors"
	"time"

	"github.com/terraincognita07/just/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KeyValueRepository struct {
	database *gorm.DB
}

func NewKeyValueRepository(database *gorm.DB) *KeyValueRepository {
	return &KeyValueRepository{database: database}
}

func (repo *KeyValueRepository) Get(key string) (string, bool, error) {
	var entry models.KeyValueEntry
	err := repo.database.Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (repo *KeyValueRepository) Exists(key string) (bool, error) {
	var matched int64
	if err := repo.database.Model(&models.KeyValueEntry{}).Where("key = ?", key).Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *KeyValueRepository) Put(key string, value string) error {
	now := time.Now().UTC()
	entry := models.KeyValueEntry{
		Key:       key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return repo.database.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (repo *KeyValueRepository) Delete(key string) error {
	return repo.database.Where("key = ?", key).Delete(&models.KeyValueEntry{}).Error
}
