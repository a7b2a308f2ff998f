package database

import (
	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Category{},
		&models.Subcategory{},
		&models.Region{},
		&models.Tender{},
		&models.Reminder{},
		&models.Notification{},
		&models.PendingNotification{},
		&models.NotificationLog{},
		&models.ActivityLog{},
	)
}

// SeedData inserts the default catalog rows a fresh install needs.
func SeedData(db *gorm.DB) error {
	categories := []models.Category{
		{BaseModel: models.BaseModel{ID: "construction"}, Name: "Construction"},
		{BaseModel: models.BaseModel{ID: "it-services"}, Name: "IT Services"},
		{BaseModel: models.BaseModel{ID: "consultancy"}, Name: "Consultancy"},
	}
	for _, category := range categories {
		if err := db.
			Where(models.Category{BaseModel: models.BaseModel{ID: category.ID}}).
			Attrs(category).
			FirstOrCreate(&models.Category{}).Error; err != nil {
			return err
		}
	}
	return nil
}
