package models

// ActivityLog records system-level batch activity such as expiry sweeps.
type ActivityLog struct {
	BaseModel

	Actor  string `gorm:"type:varchar(64);not null" json:"actor"`
	Action string `gorm:"type:varchar(64);not null;index" json:"action"`
	Detail string `gorm:"type:text" json:"detail"`
}
