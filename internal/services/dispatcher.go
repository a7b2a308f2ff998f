package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/models"
	apperrors "github.com/aschalew-star/tenderalert/pkg/errors"
	"github.com/aschalew-star/tenderalert/pkg/logger"
	"github.com/aschalew-star/tenderalert/pkg/mail"
	"github.com/aschalew-star/tenderalert/pkg/metrics"
)

// DispatchStatus is the final outcome of one dispatcher invocation.
type DispatchStatus string

const (
	// Persisted in the notification log.
	DispatchSuccess DispatchStatus = models.DeliverySuccess
	DispatchSkipped DispatchStatus = models.DeliverySkipped
	DispatchFailed  DispatchStatus = models.DeliveryFailed

	// Short-circuit outcomes; no log row is written for these.
	DispatchAlreadySent DispatchStatus = "already_sent"
	DispatchNoRecipient DispatchStatus = "no_recipient"
)

const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = time.Second
)

// DispatchInput describes one notification to deliver.
type DispatchInput struct {
	Recipient Recipient
	Tender    *models.Tender // optional; enables the tender-scoped dedup guard
	Type      string
	Subject   string
	Message   string
}

// DispatcherService owns the side effects of notifying one recipient:
// deduplication, email delivery with retry, and persisting the audit log plus
// the recipient-facing notification record. It never surfaces delivery
// failures to its caller; one recipient's outcome must not block the next.
type DispatcherService struct {
	db        *gorm.DB
	directory *DirectoryService
	mailer    mail.Mailer
	retry     retryPolicy
	log       *zap.Logger
}

// DispatcherOption customises the DispatcherService.
type DispatcherOption func(*DispatcherService)

// WithMaxRetries bounds email delivery attempts per invocation.
func WithMaxRetries(n int) DispatcherOption {
	return func(s *DispatcherService) {
		if n > 0 {
			s.retry.attempts = n
		}
	}
}

// WithRetryBackoff sets the linear backoff unit between delivery attempts.
func WithRetryBackoff(d time.Duration) DispatcherOption {
	return func(s *DispatcherService) {
		if d >= 0 {
			s.retry.backoff = d
		}
	}
}

// NewDispatcherService constructs a DispatcherService.
func NewDispatcherService(db *gorm.DB, mailer mail.Mailer, opts ...DispatcherOption) (*DispatcherService, error) {
	if db == nil {
		return nil, errors.New("dispatcher service: db is required")
	}
	if mailer == nil {
		return nil, errors.New("dispatcher service: mailer is required")
	}

	directory, err := NewDirectoryService(db)
	if err != nil {
		return nil, err
	}

	s := &DispatcherService{
		db:        db,
		directory: directory,
		mailer:    mailer,
		retry:     retryPolicy{attempts: defaultMaxRetries, backoff: defaultRetryBackoff},
		log:       logger.WithModule("dispatcher"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dispatch delivers one notification and records the outcome. The returned
// status is informational; callers may ignore it.
func (s *DispatcherService) Dispatch(ctx context.Context, input DispatchInput) DispatchStatus {
	ctx = ensureContext(ctx)

	if !input.Recipient.Valid() {
		s.log.Warn("dispatch without recipient", zap.String("type", input.Type))
		return s.finish(DispatchNoRecipient)
	}

	if input.Tender != nil {
		sent, err := s.alreadyNotified(ctx, input.Tender.ID, input.Recipient)
		if err != nil {
			// Proceed; the unique constraint still catches a duplicate insert.
			s.log.Error("dedup check failed", zap.Error(err), zap.Stringer("recipient", input.Recipient))
		}
		if sent {
			s.log.Debug("already notified for tender",
				zap.String("tender_id", input.Tender.ID),
				zap.Stringer("recipient", input.Recipient))
			return s.finish(DispatchAlreadySent)
		}
	}

	contact, err := s.directory.Lookup(ctx, input.Recipient)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.log.Warn("no recipient record found", zap.Stringer("recipient", input.Recipient))
			return s.finish(DispatchNoRecipient)
		}
		s.log.Error("recipient lookup failed", zap.Error(err), zap.Stringer("recipient", input.Recipient))
		return s.finish(DispatchFailed)
	}

	status := DispatchSkipped
	attempts := 0
	var sendErr error

	if contact.Email == "" {
		s.log.Info("recipient has no email address, skipping delivery",
			zap.Stringer("recipient", input.Recipient))
	} else {
		attempts, sendErr = s.retry.run(ctx, func() error {
			err := s.mailer.Send(ctx, mail.Message{
				To:      contact.Email,
				Subject: input.Subject,
				HTML:    renderEmailBody(contact.FirstName, input.Message),
			})
			if err != nil {
				metrics.EmailSendAttempts.WithLabelValues("failure").Inc()
				s.log.Warn("email send attempt failed", zap.Error(err), zap.String("to", contact.Email))
				return err
			}
			metrics.EmailSendAttempts.WithLabelValues("success").Inc()
			return nil
		})
		if sendErr == nil {
			status = DispatchSuccess
		} else {
			status = DispatchFailed
		}
	}

	s.writeLog(ctx, input, status, attempts, sendErr)

	if status == DispatchSuccess {
		s.writeNotification(ctx, input)
	}

	return s.finish(status)
}

func (s *DispatcherService) finish(status DispatchStatus) DispatchStatus {
	metrics.NotificationsDispatched.WithLabelValues(string(status)).Inc()
	return status
}

// alreadyNotified checks for a persisted Notification for the pair. Querying
// durable rows rather than in-memory state keeps restarts idempotent.
func (s *DispatcherService) alreadyNotified(ctx context.Context, tenderID string, r Recipient) (bool, error) {
	userID, customerID := r.columns()

	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("tender_id = ?", tenderID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	} else {
		query = query.Where("customer_id = ?", *customerID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("dispatcher service: count notifications: %w", err)
	}
	return count > 0, nil
}

func (s *DispatcherService) writeLog(ctx context.Context, input DispatchInput, status DispatchStatus, attempts int, sendErr error) {
	userID, customerID := input.Recipient.columns()

	entry := models.NotificationLog{
		UserID:     userID,
		CustomerID: customerID,
		Channel:    "email",
		Status:     string(status),
		Attempts:   attempts,
	}
	if input.Tender != nil {
		tenderID := input.Tender.ID
		entry.TenderID = &tenderID
	}
	if sendErr != nil {
		entry.Error = sendErr.Error()
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Error("write notification log failed", zap.Error(err), zap.Stringer("recipient", input.Recipient))
	}
}

func (s *DispatcherService) writeNotification(ctx context.Context, input DispatchInput) {
	userID, customerID := input.Recipient.columns()

	notification := models.Notification{
		UserID:     userID,
		CustomerID: customerID,
		Type:       input.Type,
		Message:    input.Message,
	}
	if input.Tender != nil {
		tenderID := input.Tender.ID
		notification.TenderID = &tenderID

		meta := map[string]string{"tender_id": tenderID}
		if input.Tender.Title != "" {
			meta["tender_title"] = input.Tender.Title
		}
		if data, err := json.Marshal(meta); err == nil {
			notification.Metadata = datatypes.JSON(data)
		}
	}

	if err := s.db.WithContext(ctx).Create(&notification).Error; err != nil {
		if isUniqueConstraintError(err) {
			// A concurrent writer won the race; the invariant holds.
			s.log.Debug("notification already recorded", zap.Stringer("recipient", input.Recipient))
			return
		}
		s.log.Error("write notification failed", zap.Error(err), zap.Stringer("recipient", input.Recipient))
	}
}

func renderEmailBody(firstName, message string) string {
	greeting := "Hello"
	if firstName != "" {
		greeting = "Hello " + html.EscapeString(firstName)
	}
	return fmt.Sprintf("<p>%s,</p><p>%s</p>", greeting, html.EscapeString(message))
}
