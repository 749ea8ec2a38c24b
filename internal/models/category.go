package models

import "time"

// Category groups songs in the catalog. Names are display labels and may repeat.
type Category struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	CategoryName string `gorm:"size:255;not null" json:"category_name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
