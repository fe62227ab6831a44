package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/camden-git/photometabackend/models"
)

// DirectoryRepository handles database operations for ScannedDirectory
// entities
type DirectoryRepository struct {
	DB *gorm.DB
}

// NewDirectoryRepository creates a new instance of DirectoryRepository
func NewDirectoryRepository(db *gorm.DB) *DirectoryRepository {
	return &DirectoryRepository{DB: db}
}

// MarkScanned records a completed scan of a directory, inserting or
// refreshing its row.
func (r *DirectoryRepository) MarkScanned(path string, scannedAt int64) error {
	dir := models.ScannedDirectory{Path: path, LastScanAt: scannedAt}
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_scan_at"}),
	}).Create(&dir).Error
	if err != nil {
		return fmt.Errorf("failed to mark directory %s scanned: %w", path, err)
	}
	return nil
}

// IsScanned reports whether the directory has a completed scan on
// record.
func (r *DirectoryRepository) IsScanned(path string) (bool, error) {
	var count int64
	err := r.DB.Model(&models.ScannedDirectory{}).Where("path = ?", path).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check scanned state of %s: %w", path, err)
	}
	return count > 0, nil
}

// ListAll returns every scanned directory, most recently scanned first.
func (r *DirectoryRepository) ListAll() ([]models.ScannedDirectory, error) {
	var dirs []models.ScannedDirectory
	err := r.DB.Order("last_scan_at DESC").Find(&dirs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scanned directories: %w", err)
	}
	return dirs, nil
}
