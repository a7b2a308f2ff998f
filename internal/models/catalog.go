package models

// Category is a top-level tender classification.
type Category struct {
	BaseModel

	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// Subcategory refines a Category.
type Subcategory struct {
	BaseModel

	Name       string    `gorm:"not null" json:"name"`
	CategoryID string    `gorm:"type:uuid;index;not null" json:"category_id"`
	Category   *Category `json:"category,omitempty"`
}

// Region is a geographic classification for tenders.
type Region struct {
	BaseModel

	Name string `gorm:"uniqueIndex;not null" json:"name"`
}
