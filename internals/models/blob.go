package models

import "time"

// Blob is one named JSON document. The registries keep their id sets in
// rows named "admins" and "channels".
type Blob struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text"`
	UpdatedAt time.Time
}
