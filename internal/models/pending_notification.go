package models

import "time"

// PendingNotification is a matched-but-deferred notification awaiting its
// delivery window. Rows are deleted once processed or superseded.
type PendingNotification struct {
	BaseModel

	UserID     *string `gorm:"type:uuid;index" json:"user_id"`
	CustomerID *string `gorm:"type:uuid;index" json:"customer_id"`
	TenderID   string  `gorm:"type:uuid;index;not null" json:"tender_id"`

	Type     string    `gorm:"type:varchar(64);not null" json:"type"`
	Message  string    `gorm:"type:text;not null" json:"message"`
	NotifyAt time.Time `gorm:"index;not null" json:"notify_at"`
}
