package repository

import (
	"github.com/camden-git/photometabackend/models"
)

// TagRepositoryInterface defines the methods for tag data operations
type TagRepositoryInterface interface {
	GetOrCreate(name, tagType string) (*models.Tag, error)
	ListNames(tagType string) ([]string, error)
	SearchNames(query, tagType string, limit int) ([]string, error)
}

// ImageRepositoryInterface defines the methods for image data operations
type ImageRepositoryInterface interface {
	GetOrCreate(path string, modTime int64) (*models.Image, error)
	GetByPath(path string) (*models.Image, error)
	ListIndexed(folder string) (map[string]int64, error)
	PurgeMissing(folder string, keep map[string]struct{}) (int64, error)
	ReplaceTags(imageID uint, tagType string, values []string) error
	ClearTags(imageID uint, tagType string) error
	SearchPaths(folder string, words []string, tagType string, limit, offset int) ([]string, error)
	CountSearch(folder string, words []string, tagType string) (int64, error)
	TaggedPaths(folder, tagType string) ([]string, error)
}

// DirectoryRepositoryInterface defines the methods for scanned
// directory bookkeeping
type DirectoryRepositoryInterface interface {
	MarkScanned(path string, scannedAt int64) error
	IsScanned(path string) (bool, error)
	ListAll() ([]models.ScannedDirectory, error)
}

// PreferenceRepositoryInterface defines the methods for preference
// data operations
type PreferenceRepositoryInterface interface {
	Get(key string) (*models.Preference, error)
	Set(key, value string) error
	ListAll() ([]models.Preference, error)
}
