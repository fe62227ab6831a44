package models

// Tag represents one indexed tag value in the database using GORM. It
// corresponds to the 'tags' table. The same text may appear once per
// tag type; Type holds the field label the value was read from, e.g.
// "Keywords" or "DateTimeOriginal".
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"column:tag;uniqueIndex:idx_tags_tag_type;index;not null" json:"tag"`
	Type string `gorm:"column:tag_type;uniqueIndex:idx_tags_tag_type;index;not null" json:"tag_type"`
}

// TableName explicitly sets the table name for GORM.
func (Tag) TableName() string {
	return "tags"
}
