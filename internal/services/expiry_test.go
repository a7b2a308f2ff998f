package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/models"
)

func seedSubscribedCustomer(t *testing.T, db *gorm.DB, id string, endsAt *time.Time) models.Customer {
	t.Helper()
	customer := models.Customer{
		BaseModel:          models.BaseModel{ID: id},
		Email:              id + "@example.com",
		FirstName:          "Customer",
		Password:           "x",
		IsSubscribed:       true,
		SubscriptionEndsAt: endsAt,
	}
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func TestSweepExpiredUnsubscribesPastDue(t *testing.T) {
	db := openServiceTestDB(t)
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	past := now.Add(-24 * time.Hour)
	future := now.Add(24 * time.Hour)
	seedSubscribedCustomer(t, db, "cust-expired", &past)
	active := seedSubscribedCustomer(t, db, "cust-active", &future)
	lifetime := seedSubscribedCustomer(t, db, "cust-lifetime", nil)

	svc, err := NewExpiryService(db, WithExpiryClock(fixedClock(now)))
	require.NoError(t, err)

	count, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	var expired models.Customer
	require.NoError(t, db.First(&expired, "id = ?", "cust-expired").Error)
	require.False(t, expired.IsSubscribed)

	require.NoError(t, db.First(&active, "id = ?", active.ID).Error)
	require.True(t, active.IsSubscribed)

	// No end date means the subscription never lapses on its own.
	require.NoError(t, db.First(&lifetime, "id = ?", lifetime.ID).Error)
	require.True(t, lifetime.IsSubscribed)

	require.EqualValues(t, 1, countRows(t, db, &models.ActivityLog{}, "action = ?", "subscription.expired"))
}

func TestSweepExpiredIsIdempotent(t *testing.T) {
	db := openServiceTestDB(t)
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	seedSubscribedCustomer(t, db, "cust-expired", &past)

	svc, err := NewExpiryService(db, WithExpiryClock(fixedClock(now)))
	require.NoError(t, err)

	count, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	count, err = svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, count)
	require.EqualValues(t, 1, countRows(t, db, &models.ActivityLog{}, ""))
}

func TestSweepExpiredProcessesInBatches(t *testing.T) {
	db := openServiceTestDB(t)
	now := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)

	for i := 0; i < 5; i++ {
		seedSubscribedCustomer(t, db, fmt.Sprintf("cust-%d", i), &past)
	}

	svc, err := NewExpiryService(db,
		WithExpiryClock(fixedClock(now)),
		WithExpiryBatchSize(2))
	require.NoError(t, err)

	count, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 5, count)

	require.EqualValues(t, 0, countRows(t, db, &models.Customer{}, "is_subscribed = ?", true))
	// Batches of 2, 2 and 1 each leave an activity trace.
	require.EqualValues(t, 3, countRows(t, db, &models.ActivityLog{}, ""))
}
