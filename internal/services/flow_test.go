package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aschalew-star/tenderalert/internal/models"
)

// Exercises the full path: a tender published mid-morning reaches a MORNING
// user immediately, defers an EVENING customer into the pending queue, and
// the evening sweep promotes the queued entry.
func TestTenderNotificationFlow(t *testing.T) {
	db := openServiceTestDB(t)
	fixture := seedCatalog(t, db)
	tender := seedTender(t, db, "tender-42", fixture, nil)

	user := seedUser(t, db, "user-1", "alice@example.com")
	customer := seedCustomer(t, db, "cust-1", "chaltu@example.com")

	userID := user.ID
	seedReminder(t, db, models.Reminder{
		UserID:     &userID,
		Type:       models.ReminderMorning,
		Categories: []models.Category{fixture.Category},
	})
	customerID := customer.ID
	seedReminder(t, db, models.Reminder{
		CustomerID: &customerID,
		Type:       models.ReminderEvening,
	})

	publishedAt := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	mailer := &stubMailer{}
	dispatcher := newTestDispatcher(t, db, mailer)

	pending, err := NewPendingService(db, dispatcher, WithPendingClock(fixedClock(publishedAt)))
	require.NoError(t, err)
	matcher, err := NewMatcherService(db, dispatcher, pending,
		WithMatcherClock(fixedClock(publishedAt)),
		WithLocation(time.UTC))
	require.NoError(t, err)

	matcher.QueueNotificationsForNewTender(context.Background(), tender.ID)

	// 09:00 is inside the morning window, so the user is notified at once.
	require.Equal(t, 1, mailer.calls)
	require.Equal(t, "alice@example.com", mailer.sent[0].To)
	require.EqualValues(t, 1, countRows(t, db, &models.Notification{}, "user_id = ?", user.ID))

	// The evening customer is queued for 18:00 the same day.
	var queued models.PendingNotification
	require.NoError(t, db.First(&queued).Error)
	require.Equal(t, customer.ID, *queued.CustomerID)
	require.Equal(t, time.Date(2026, time.March, 10, 18, 0, 0, 0, time.UTC), queued.NotifyAt.UTC())

	// A mid-afternoon sweep finds nothing due.
	require.NoError(t, pending.ProcessDue(context.Background()))
	require.Equal(t, 1, mailer.calls)

	// The 18:05 sweep promotes the queued entry and clears the row.
	evening, err := NewPendingService(db, dispatcher,
		WithPendingClock(fixedClock(publishedAt.Add(9*time.Hour+5*time.Minute))))
	require.NoError(t, err)
	require.NoError(t, evening.ProcessDue(context.Background()))

	require.Equal(t, 2, mailer.calls)
	require.Equal(t, "chaltu@example.com", mailer.sent[1].To)
	require.EqualValues(t, 0, countRows(t, db, &models.PendingNotification{}, ""))
	require.EqualValues(t, 1, countRows(t, db, &models.Notification{}, "customer_id = ?", customer.ID))
	require.EqualValues(t, 2, countRows(t, db, &models.NotificationLog{}, "status = ?", models.DeliverySuccess))

	// Replaying the tender event afterwards sends nothing new.
	matcher.QueueNotificationsForNewTender(context.Background(), tender.ID)
	require.Equal(t, 2, mailer.calls)
	require.EqualValues(t, 2, countRows(t, db, &models.Notification{}, ""))
}
