package models

// System user roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a system user operating the tender platform.
type User struct {
	BaseModel

	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string `gorm:"type:varchar(128);not null" json:"first_name"`
	LastName  string `gorm:"type:varchar(128)" json:"last_name"`
	Password  string `gorm:"not null" json:"-"`
	Role      string `gorm:"type:varchar(32);default:'staff';index" json:"role"`
	// No default tag: gorm drops zero-valued defaulted fields from the
	// INSERT, which would resurrect deactivated accounts on save.
	IsActive bool `gorm:"index" json:"is_active"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
