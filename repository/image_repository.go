package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/camden-git/photometabackend/database"
	"github.com/camden-git/photometabackend/models"
)

// purgeBatchSize keeps deletions under SQLite's bound-variable limit.
const purgeBatchSize = 500

// ImageRepository handles database operations for Image entities
type ImageRepository struct {
	DB *gorm.DB
}

// NewImageRepository creates a new instance of ImageRepository
func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{DB: db}
}

// GetOrCreate returns the image row for a path, inserting it first when
// absent, and refreshes the recorded modification time.
func (r *ImageRepository) GetOrCreate(path string, modTime int64) (*models.Image, error) {
	image := models.Image{Path: path, LastModified: modTime}
	result := r.DB.Where(models.Image{Path: path}).FirstOrCreate(&image)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to ensure image record for %s: %w", path, result.Error)
	}
	if image.LastModified != modTime {
		if err := r.DB.Model(&image).Update("last_modified", modTime).Error; err != nil {
			return nil, fmt.Errorf("failed to update modification time for %s: %w", path, err)
		}
		image.LastModified = modTime
	}
	return &image, nil
}

// GetByPath retrieves an image row by its absolute path.
func (r *ImageRepository) GetByPath(path string) (*models.Image, error) {
	var image models.Image
	err := r.DB.Where("path = ?", path).First(&image).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get image by path %s: %w", path, err)
	}
	return &image, nil
}

// ListIndexed returns all indexed paths under a folder prefix, mapped
// to their recorded modification times.
func (r *ImageRepository) ListIndexed(folder string) (map[string]int64, error) {
	var images []models.Image
	err := r.DB.Select("id", "path", "last_modified").
		Where("path LIKE ?", folder+"%").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed images under %s: %w", folder, err)
	}
	indexed := make(map[string]int64, len(images))
	for _, img := range images {
		indexed[img.Path] = img.LastModified
	}
	return indexed, nil
}

// PurgeMissing deletes index rows under a folder whose paths are not in
// keep, along with their tag associations. Returns the number of rows
// removed.
func (r *ImageRepository) PurgeMissing(folder string, keep map[string]struct{}) (int64, error) {
	var images []models.Image
	err := r.DB.Select("id", "path").
		Where("path LIKE ?", folder+"%").
		Find(&images).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list images for purge under %s: %w", folder, err)
	}

	var doomed []uint
	for _, img := range images {
		if _, ok := keep[img.Path]; !ok {
			doomed = append(doomed, img.ID)
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	err = r.DB.Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(doomed); start += purgeBatchSize {
			end := start + purgeBatchSize
			if end > len(doomed) {
				end = len(doomed)
			}
			chunk := doomed[start:end]
			if err := tx.Exec("DELETE FROM image_tags WHERE image_id IN ?", chunk).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.Image{}, chunk).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to purge %d missing images under %s: %w", len(doomed), folder, err)
	}
	return int64(len(doomed)), nil
}

// ClearTags removes an image's tag associations, optionally restricted
// to one tag type. The tag rows themselves stay for suggestions.
func (r *ImageRepository) ClearTags(imageID uint, tagType string) error {
	sqlStr, args, err := database.ClearImageTagsQuery(imageID, tagType)
	if err != nil {
		return fmt.Errorf("failed to build clear query for image %d: %w", imageID, err)
	}
	if err := r.DB.Exec(sqlStr, args...).Error; err != nil {
		return fmt.Errorf("failed to clear tags for image %d: %w", imageID, err)
	}
	return nil
}

// ReplaceTags swaps an image's associations of one tag type for the
// given values, creating tag rows as needed. Blank values are skipped.
func (r *ImageRepository) ReplaceTags(imageID uint, tagType string, values []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		sqlStr, args, err := database.ClearImageTagsQuery(imageID, tagType)
		if err != nil {
			return fmt.Errorf("failed to build clear query for image %d: %w", imageID, err)
		}
		if err := tx.Exec(sqlStr, args...).Error; err != nil {
			return fmt.Errorf("failed to clear %s tags for image %d: %w", tagType, imageID, err)
		}

		for _, value := range values {
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			tag := models.Tag{Name: value, Type: tagType}
			if err := tx.Where(models.Tag{Name: value, Type: tagType}).FirstOrCreate(&tag).Error; err != nil {
				return fmt.Errorf("failed to get or create tag %q (%s): %w", value, tagType, err)
			}
			sqlStr, args, err := database.AddImageTagQuery(imageID, tag.ID)
			if err != nil {
				return fmt.Errorf("failed to build association insert for image %d: %w", imageID, err)
			}
			if err := tx.Exec(sqlStr, args...).Error; err != nil {
				return fmt.Errorf("failed to associate tag %q with image %d: %w", value, imageID, err)
			}
		}
		return nil
	})
}

// SearchPaths returns one page of image paths under folder matching
// every search word, optionally restricted to one tag type.
func (r *ImageRepository) SearchPaths(folder string, words []string, tagType string, limit, offset int) ([]string, error) {
	if len(words) == 0 {
		return []string{}, nil
	}
	sqlStr, args, err := database.ImageSearchQuery(folder, words, tagType, uint64(limit), uint64(offset))
	if err != nil {
		return nil, fmt.Errorf("failed to build image search query: %w", err)
	}
	paths := []string{}
	if err := r.DB.Raw(sqlStr, args...).Scan(&paths).Error; err != nil {
		return nil, fmt.Errorf("failed to search images under %s: %w", folder, err)
	}
	return paths, nil
}

// CountSearch returns the total result count for SearchPaths.
func (r *ImageRepository) CountSearch(folder string, words []string, tagType string) (int64, error) {
	if len(words) == 0 {
		return 0, nil
	}
	sqlStr, args, err := database.ImageSearchCountQuery(folder, words, tagType)
	if err != nil {
		return 0, fmt.Errorf("failed to build search count query: %w", err)
	}
	var count int64
	if err := r.DB.Raw(sqlStr, args...).Scan(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count image search under %s: %w", folder, err)
	}
	return count, nil
}

// TaggedPaths returns all image paths under folder carrying at least
// one tag of the given type.
func (r *ImageRepository) TaggedPaths(folder, tagType string) ([]string, error) {
	sqlStr, args, err := database.TaggedImagesQuery(folder, tagType)
	if err != nil {
		return nil, fmt.Errorf("failed to build tagged images query: %w", err)
	}
	paths := []string{}
	if err := r.DB.Raw(sqlStr, args...).Scan(&paths).Error; err != nil {
		return nil, fmt.Errorf("failed to list tagged images under %s: %w", folder, err)
	}
	return paths, nil
}
