package models

import "time"

// Customer is a subscribing recipient of tender notifications.
type Customer struct {
	BaseModel

	Email              string     `gorm:"uniqueIndex;not null" json:"email"`
	FirstName          string     `gorm:"type:varchar(128);not null" json:"first_name"`
	LastName           string     `gorm:"type:varchar(128)" json:"last_name"`
	Password           string     `gorm:"not null" json:"-"`
	IsSubscribed       bool       `gorm:"default:false;index" json:"is_subscribed"`
	SubscriptionEndsAt *time.Time `gorm:"index" json:"subscription_ends_at"`
}
