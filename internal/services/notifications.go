package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/models"
	apperrors "github.com/aschalew-star/tenderalert/pkg/errors"
)

// NotificationService reads and updates the recipient-facing notification
// records created by the dispatcher.
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(db *gorm.DB) (*NotificationService, error) {
	if db == nil {
		return nil, errors.New("notification service: db is required")
	}
	return &NotificationService{db: db}, nil
}

// ListForRecipient returns a recipient's notifications ordered by recency.
func (s *NotificationService) ListForRecipient(ctx context.Context, r Recipient, limit, offset int) ([]models.Notification, error) {
	ctx = ensureContext(ctx)

	if !r.Valid() {
		return nil, errors.New("notification service: recipient is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}

	var rows []models.Notification
	if err := s.recipientScope(ctx, r).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("notification service: list notifications: %w", err)
	}
	return rows, nil
}

// MarkRead flags a notification owned by the recipient as read.
func (s *NotificationService) MarkRead(ctx context.Context, r Recipient, notificationID string) (*models.Notification, error) {
	ctx = ensureContext(ctx)

	if !r.Valid() {
		return nil, errors.New("notification service: recipient is required")
	}

	var notification models.Notification
	if err := s.recipientScope(ctx, r).
		Where("id = ?", notificationID).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("notification service: load notification: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&notification).
		Update("is_read", true).Error; err != nil {
		return nil, fmt.Errorf("notification service: mark read: %w", err)
	}
	notification.IsRead = true
	notification.UpdatedAt = time.Now()
	return &notification, nil
}

func (s *NotificationService) recipientScope(ctx context.Context, r Recipient) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Notification{})
	userID, customerID := r.columns()
	if userID != nil {
		return query.Where("user_id = ?", *userID)
	}
	return query.Where("customer_id = ?", *customerID)
}
