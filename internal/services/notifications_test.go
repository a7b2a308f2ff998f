package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/models"
	apperrors "github.com/aschalew-star/tenderalert/pkg/errors"
)

func seedNotification(t *testing.T, db *gorm.DB, r Recipient, message string) models.Notification {
	t.Helper()
	userID, customerID := r.columns()
	notification := models.Notification{
		UserID:     userID,
		CustomerID: customerID,
		Type:       models.NotificationTypeTender,
		Message:    message,
	}
	require.NoError(t, db.Create(&notification).Error)
	return notification
}

func TestListForRecipientScopesByOwner(t *testing.T) {
	db := openServiceTestDB(t)
	user := seedUser(t, db, "user-1", "alice@example.com")
	customer := seedCustomer(t, db, "cust-1", "chaltu@example.com")

	seedNotification(t, db, UserRecipient(user.ID), "for the user")
	seedNotification(t, db, CustomerRecipient(customer.ID), "for the customer")

	svc, err := NewNotificationService(db)
	require.NoError(t, err)

	rows, err := svc.ListForRecipient(context.Background(), UserRecipient(user.ID), 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "for the user", rows[0].Message)

	rows, err = svc.ListForRecipient(context.Background(), CustomerRecipient(customer.ID), 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "for the customer", rows[0].Message)

	_, err = svc.ListForRecipient(context.Background(), Recipient{}, 0, 0)
	require.Error(t, err)
}

func TestMarkReadEnforcesOwnership(t *testing.T) {
	db := openServiceTestDB(t)
	user := seedUser(t, db, "user-1", "alice@example.com")
	other := seedUser(t, db, "user-2", "bob@example.com")

	notification := seedNotification(t, db, UserRecipient(user.ID), "for the user")

	svc, err := NewNotificationService(db)
	require.NoError(t, err)

	// Another recipient cannot read someone else's notification.
	_, err = svc.MarkRead(context.Background(), UserRecipient(other.ID), notification.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	updated, err := svc.MarkRead(context.Background(), UserRecipient(user.ID), notification.ID)
	require.NoError(t, err)
	require.True(t, updated.IsRead)

	var stored models.Notification
	require.NoError(t, db.First(&stored, "id = ?", notification.ID).Error)
	require.True(t, stored.IsRead)
}
