package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/photometabackend/models"
)

// PreferenceRepository handles database operations for Preference
// entities
type PreferenceRepository struct {
	DB *gorm.DB
}

// NewPreferenceRepository creates a new instance of PreferenceRepository
func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{DB: db}
}

// Get retrieves a preference by key.
func (r *PreferenceRepository) Get(key string) (*models.Preference, error) {
	var pref models.Preference
	err := r.DB.Where("key = ?", key).First(&pref).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get preference %s: %w", key, err)
	}
	return &pref, nil
}

// Set inserts or replaces a preference value.
func (r *PreferenceRepository) Set(key, value string) error {
	pref := models.Preference{Key: key, Value: value}
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&pref).Error
	if err != nil {
		return fmt.Errorf("failed to set preference %s: %w", key, err)
	}
	return nil
}

// ListAll returns every stored preference.
func (r *PreferenceRepository) ListAll() ([]models.Preference, error) {
	var prefs []models.Preference
	err := r.DB.Find(&prefs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	return prefs, nil
}
