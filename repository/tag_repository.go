package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/camden-git/photometabackend/models"
)

// TagRepository handles database operations for Tag entities
type TagRepository struct {
	DB *gorm.DB
}

// NewTagRepository creates a new instance of TagRepository
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{DB: db}
}

// GetOrCreate returns the tag row for (name, type), inserting it first
// when absent.
func (r *TagRepository) GetOrCreate(name, tagType string) (*models.Tag, error) {
	tag := models.Tag{Name: name, Type: tagType}
	result := r.DB.Where(models.Tag{Name: name, Type: tagType}).FirstOrCreate(&tag)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get or create tag %q (%s): %w", name, tagType, result.Error)
	}
	return &tag, nil
}

// ListNames returns all distinct tag values sorted alphabetically,
// optionally restricted to one tag type.
func (r *TagRepository) ListNames(tagType string) ([]string, error) {
	names := []string{}
	query := r.DB.Model(&models.Tag{}).Distinct("tag").Order("tag ASC")
	if tagType != "" {
		query = query.Where("tag_type = ?", tagType)
	}
	if err := query.Pluck("tag", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return names, nil
}

// SearchNames returns distinct tag values containing the query text,
// sorted alphabetically, up to limit.
func (r *TagRepository) SearchNames(query, tagType string, limit int) ([]string, error) {
	names := []string{}
	q := r.DB.Model(&models.Tag{}).Distinct("tag").
		Where("tag LIKE ?", "%"+query+"%").
		Order("tag ASC").
		Limit(limit)
	if tagType != "" {
		q = q.Where("tag_type = ?", tagType)
	}
	if err := q.Pluck("tag", &names).Error; err != nil {
		return nil, fmt.Errorf("failed to search tags for %q: %w", query, err)
	}
	return names, nil
}
