package models

import "time"

// Order is an inventory request a user files for lab equipment.
type Order struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	ItemName string `gorm:"size:100;not null" json:"item_name"`
	Quantity int    `gorm:"default:1" json:"quantity"`
	URL      string `gorm:"size:255" json:"url"`
	Status   string `gorm:"size:20;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
