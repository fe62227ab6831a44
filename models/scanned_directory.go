package models

// ScannedDirectory represents a directory whose images have been
// indexed, using GORM. It corresponds to the 'scanned_directories'
// table. LastScanAt is a Unix timestamp of the last completed scan.
type ScannedDirectory struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Path       string `gorm:"uniqueIndex;not null" json:"path"`
	LastScanAt int64  `gorm:"not null" json:"last_scan_at"`
}

// TableName explicitly sets the table name for GORM.
func (ScannedDirectory) TableName() string {
	return "scanned_directories"
}
