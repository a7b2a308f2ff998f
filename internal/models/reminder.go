package models

// Reminder delivery-time windows. IMMEDIATE (or any unknown value) means
// matches are delivered straight away.
const (
	ReminderMorning   = "MORNING"
	ReminderAfternoon = "AFTERNOON"
	ReminderEvening   = "EVENING"
	ReminderImmediate = "IMMEDIATE"
)

// Reminder is a standing subscription to be notified about matching tenders.
// Exactly one of UserID/CustomerID is set. Empty filter associations mean
// the reminder matches every tender.
type Reminder struct {
	BaseModel

	UserID     *string   `gorm:"type:uuid;index" json:"user_id"`
	User       *User     `json:"user,omitempty"`
	CustomerID *string   `gorm:"type:uuid;index" json:"customer_id"`
	Customer   *Customer `json:"customer,omitempty"`

	Type string `gorm:"type:varchar(16);default:'IMMEDIATE'" json:"type"`

	Categories    []Category    `gorm:"many2many:reminder_categories" json:"categories,omitempty"`
	Subcategories []Subcategory `gorm:"many2many:reminder_subcategories" json:"subcategories,omitempty"`
	Regions       []Region      `gorm:"many2many:reminder_regions" json:"regions,omitempty"`
}

// HasFilters reports whether the reminder carries any filter association.
func (r Reminder) HasFilters() bool {
	return len(r.Categories) > 0 || len(r.Subcategories) > 0 || len(r.Regions) > 0
}
