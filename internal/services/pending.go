package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/models"
	"github.com/aschalew-star/tenderalert/pkg/logger"
	"github.com/aschalew-star/tenderalert/pkg/metrics"
)

// Promotion sweep outcomes, for metrics.
const (
	promotionOutcomeSuperseded = "superseded"
	promotionOutcomeDeferred   = "deferred"
	promotionOutcomeMalformed  = "malformed"
)

// EnqueueInput describes one deferred notification.
type EnqueueInput struct {
	Recipient Recipient
	TenderID  string
	Type      string
	Message   string
	NotifyAt  time.Time
}

// PendingService owns the durable queue of deferred notifications and the
// periodic sweep that promotes due entries to the dispatcher.
type PendingService struct {
	db         *gorm.DB
	dispatcher *DispatcherService
	now        func() time.Time
	log        *zap.Logger
}

// PendingOption customises the PendingService.
type PendingOption func(*PendingService)

// WithPendingClock overrides the clock, primarily for tests.
func WithPendingClock(now func() time.Time) PendingOption {
	return func(s *PendingService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewPendingService constructs a PendingService.
func NewPendingService(db *gorm.DB, dispatcher *DispatcherService, opts ...PendingOption) (*PendingService, error) {
	if db == nil {
		return nil, errors.New("pending service: db is required")
	}
	if dispatcher == nil {
		return nil, errors.New("pending service: dispatcher is required")
	}

	s := &PendingService{
		db:         db,
		dispatcher: dispatcher,
		now:        time.Now,
		log:        logger.WithModule("pending"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Enqueue stores a deferred notification, skipping silently when a queue row
// or an already-sent Notification exists for the same (tender, recipient).
func (s *PendingService) Enqueue(ctx context.Context, input EnqueueInput) error {
	ctx = ensureContext(ctx)

	if !input.Recipient.Valid() {
		return errors.New("pending service: recipient is required")
	}
	if input.TenderID == "" {
		return errors.New("pending service: tender id is required")
	}
	if input.NotifyAt.IsZero() {
		return errors.New("pending service: notify-at time is required")
	}

	queued, err := s.hasQueued(ctx, input.TenderID, input.Recipient)
	if err != nil {
		return err
	}
	if queued {
		s.log.Debug("pending entry already queued",
			zap.String("tender_id", input.TenderID),
			zap.Stringer("recipient", input.Recipient))
		return nil
	}

	sent, err := s.dispatcher.alreadyNotified(ctx, input.TenderID, input.Recipient)
	if err != nil {
		return err
	}
	if sent {
		s.log.Debug("notification already sent, not queueing",
			zap.String("tender_id", input.TenderID),
			zap.Stringer("recipient", input.Recipient))
		return nil
	}

	userID, customerID := input.Recipient.columns()
	entry := models.PendingNotification{
		UserID:     userID,
		CustomerID: customerID,
		TenderID:   input.TenderID,
		Type:       input.Type,
		Message:    input.Message,
		NotifyAt:   input.NotifyAt,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("pending service: create entry: %w", err)
	}

	s.log.Info("notification deferred",
		zap.String("tender_id", input.TenderID),
		zap.Stringer("recipient", input.Recipient),
		zap.Time("notify_at", input.NotifyAt))
	return nil
}

// ProcessDue promotes every due queue entry to the dispatcher. Entries are
// processed and deleted one at a time so a crash mid-sweep only loses
// progress on the rows not yet handled. A failed dispatch still deletes the
// entry; the notification log is its trace. Returns an error only when the
// due-entry scan itself fails.
func (s *PendingService) ProcessDue(ctx context.Context) error {
	ctx = ensureContext(ctx)

	var due []models.PendingNotification
	if err := s.db.WithContext(ctx).
		Where("notify_at <= ?", s.now()).
		Order("notify_at").
		Find(&due).Error; err != nil {
		return fmt.Errorf("pending service: load due entries: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(due))
	for _, entry := range due {
		recipient, ok := recipientFromColumns(entry.UserID, entry.CustomerID)
		if !ok {
			s.log.Warn("pending entry has no recipient", zap.String("id", entry.ID))
			s.delete(ctx, entry.ID)
			metrics.PendingPromoted.WithLabelValues(promotionOutcomeMalformed).Inc()
			continue
		}

		// Recipient already handled this run; leave the row for the next
		// sweep rather than dropping it.
		if _, done := seen[recipient.Key()]; done {
			metrics.PendingPromoted.WithLabelValues(promotionOutcomeDeferred).Inc()
			continue
		}
		seen[recipient.Key()] = struct{}{}

		sent, err := s.dispatcher.alreadyNotified(ctx, entry.TenderID, recipient)
		if err != nil {
			s.log.Error("promotion dedup check failed", zap.Error(err), zap.String("id", entry.ID))
			continue
		}
		if sent {
			s.delete(ctx, entry.ID)
			metrics.PendingPromoted.WithLabelValues(promotionOutcomeSuperseded).Inc()
			continue
		}

		status := s.dispatcher.Dispatch(ctx, DispatchInput{
			Recipient: recipient,
			Tender:    &models.Tender{BaseModel: models.BaseModel{ID: entry.TenderID}},
			Type:      entry.Type,
			Subject:   "Tender reminder",
			Message:   entry.Message,
		})

		s.delete(ctx, entry.ID)
		metrics.PendingPromoted.WithLabelValues(string(status)).Inc()
	}

	return nil
}

func (s *PendingService) hasQueued(ctx context.Context, tenderID string, r Recipient) (bool, error) {
	userID, customerID := r.columns()

	query := s.db.WithContext(ctx).Model(&models.PendingNotification{}).Where("tender_id = ?", tenderID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	} else {
		query = query.Where("customer_id = ?", *customerID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("pending service: count entries: %w", err)
	}
	return count > 0, nil
}

func (s *PendingService) delete(ctx context.Context, id string) {
	if err := s.db.WithContext(ctx).Delete(&models.PendingNotification{}, "id = ?", id).Error; err != nil {
		s.log.Error("delete pending entry failed", zap.Error(err), zap.String("id", id))
	}
}
