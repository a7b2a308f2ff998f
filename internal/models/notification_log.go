package models

// Delivery outcomes recorded in the notification log.
const (
	DeliverySuccess = "success"
	DeliverySkipped = "skipped"
	DeliveryFailed  = "failed"
)

// NotificationLog is the append-only audit trail of delivery attempts.
// Exactly one row is written per dispatcher invocation that reached the
// delivery stage, whatever the outcome.
type NotificationLog struct {
	BaseModel

	UserID     *string `gorm:"type:uuid;index" json:"user_id"`
	CustomerID *string `gorm:"type:uuid;index" json:"customer_id"`
	TenderID   *string `gorm:"type:uuid;index" json:"tender_id"`

	Channel  string `gorm:"type:varchar(32);default:'email'" json:"channel"`
	Status   string `gorm:"type:varchar(16);not null;index" json:"status"`
	Attempts int    `gorm:"default:0" json:"attempts"`
	Error    string `gorm:"type:text" json:"error,omitempty"`
}
