package models

// Preference is a single key/value UI preference using GORM. It
// corresponds to the 'preferences' table.
type Preference struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `gorm:"not null" json:"value"`
}

// TableName explicitly sets the table name for GORM.
func (Preference) TableName() string {
	return "preferences"
}
