package models

// Image represents an indexed image file in the database using GORM.
// It corresponds to the 'images' table. Paths are absolute; the index
// is rebuilt from the files themselves, so no metadata is stored here.
type Image struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Path         string `gorm:"uniqueIndex;not null" json:"path"`
	LastModified int64  `gorm:"not null;default:0" json:"last_modified"`

	Tags []Tag `gorm:"many2many:image_tags;" json:"tags,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Image) TableName() string {
	return "images"
}
