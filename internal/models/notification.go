package models

import "gorm.io/datatypes"

// Notification types.
const (
	NotificationTypeTender  = "tender.match"
	NotificationTypeWelcome = "account.welcome"
	NotificationTypeNewUser = "account.registered"
)

// Notification is the recipient-visible record of a delivered notification.
// The composite unique indexes on (tender_id, user_id) and
// (tender_id, customer_id) back the at-most-one-per-tender-and-recipient
// invariant; a violation on insert means the pair was already notified.
type Notification struct {
	BaseModel

	UserID     *string   `gorm:"type:uuid;index;uniqueIndex:idx_notifications_tender_user" json:"user_id"`
	User       *User     `json:"-"`
	CustomerID *string   `gorm:"type:uuid;index;uniqueIndex:idx_notifications_tender_customer" json:"customer_id"`
	Customer   *Customer `json:"-"`

	TenderID *string `gorm:"type:uuid;uniqueIndex:idx_notifications_tender_user;uniqueIndex:idx_notifications_tender_customer" json:"tender_id"`
	Tender   *Tender `json:"-"`

	Type     string         `gorm:"type:varchar(64);not null" json:"type"`
	Message  string         `gorm:"type:text;not null" json:"message"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`
	IsRead   bool           `gorm:"default:false;index" json:"is_read"`
}
