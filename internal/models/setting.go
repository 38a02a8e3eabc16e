package models

import "time"

// GlobalSetting is an admin-managed key/value pair, e.g. "user.max_recordings".
type GlobalSetting struct {
	Key         string `gorm:"primaryKey;size:100" json:"key"`
	Value       string `gorm:"size:255" json:"value"`
	Description string `gorm:"size:255" json:"description"`

	UpdatedAt time.Time `json:"updated_at"`
}
