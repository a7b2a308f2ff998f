package models

import "time"

// Tender is a published tender listing. Once created it is immutable as far
// as the notification subsystem is concerned.
type Tender struct {
	BaseModel

	Title         string       `gorm:"type:varchar(255);not null" json:"title"`
	Description   string       `gorm:"type:text" json:"description"`
	CategoryID    string       `gorm:"type:uuid;index;not null" json:"category_id"`
	Category      *Category    `json:"category,omitempty"`
	SubcategoryID string       `gorm:"type:uuid;index;not null" json:"subcategory_id"`
	Subcategory   *Subcategory `json:"subcategory,omitempty"`
	RegionID      *string      `gorm:"type:uuid;index" json:"region_id"`
	Region        *Region      `json:"region,omitempty"`
	ClosesAt      *time.Time   `json:"closes_at"`
}
