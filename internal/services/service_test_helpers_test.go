package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/database/testutil"
	"github.com/aschalew-star/tenderalert/internal/models"
	"github.com/aschalew-star/tenderalert/pkg/mail"
)

// stubMailer records sends and can be told to fail the first N attempts
// (or all of them with a large failUntil).
type stubMailer struct {
	sent      []mail.Message
	calls     int
	failUntil int
}

func (m *stubMailer) Send(_ context.Context, msg mail.Message) error {
	m.calls++
	if m.calls <= m.failUntil {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

// fixedClock returns a clock function pinned to the given time.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestDispatcher(t *testing.T, db *gorm.DB, mailer mail.Mailer) *DispatcherService {
	t.Helper()
	dispatcher, err := NewDispatcherService(db, mailer, WithRetryBackoff(0))
	require.NoError(t, err)
	return dispatcher
}

type catalogFixture struct {
	Category    models.Category
	Subcategory models.Subcategory
	Region      models.Region
}

func seedCatalog(t *testing.T, db *gorm.DB) catalogFixture {
	t.Helper()

	fixture := catalogFixture{
		Category:    models.Category{BaseModel: models.BaseModel{ID: "cat-construction"}, Name: "Construction"},
		Region:      models.Region{BaseModel: models.BaseModel{ID: "reg-oromia"}, Name: "Oromia"},
	}
	fixture.Subcategory = models.Subcategory{
		BaseModel:  models.BaseModel{ID: "sub-roads"},
		Name:       "Road Works",
		CategoryID: fixture.Category.ID,
	}

	require.NoError(t, db.Create(&fixture.Category).Error)
	require.NoError(t, db.Create(&fixture.Subcategory).Error)
	require.NoError(t, db.Create(&fixture.Region).Error)
	return fixture
}

func seedUser(t *testing.T, db *gorm.DB, id, email string) models.User {
	t.Helper()
	user := models.User{
		BaseModel: models.BaseModel{ID: id},
		Email:     email,
		FirstName: "Test",
		Password:  "hashed",
		Role:      models.RoleStaff,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedCustomer(t *testing.T, db *gorm.DB, id, email string) models.Customer {
	t.Helper()
	customer := models.Customer{
		BaseModel: models.BaseModel{ID: id},
		Email:     email,
		FirstName: "Test",
		Password:  "hashed",
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func seedTender(t *testing.T, db *gorm.DB, id string, fixture catalogFixture, regionID *string) models.Tender {
	t.Helper()
	tender := models.Tender{
		BaseModel:     models.BaseModel{ID: id},
		Title:         "Addis ring road rehabilitation",
		CategoryID:    fixture.Category.ID,
		SubcategoryID: fixture.Subcategory.ID,
		RegionID:      regionID,
	}
	require.NoError(t, db.Create(&tender).Error)
	return tender
}

func countRows(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	var count int64
	tx := db.Model(model)
	if query != "" {
		tx = tx.Where(query, args...)
	}
	require.NoError(t, tx.Count(&count).Error)
	return count
}

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.MustOpenTestDB(t)
}
