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

const defaultExpiryBatchSize = 1000

// ExpiryService flips is_subscribed off for customers whose subscription end
// date has passed. Batches are processed in per-batch transactions alongside
// an activity-log insert, using the same retry helper as the dispatcher.
type ExpiryService struct {
	db        *gorm.DB
	now       func() time.Time
	batchSize int
	retry     retryPolicy
	log       *zap.Logger
}

// ExpiryOption customises the ExpiryService.
type ExpiryOption func(*ExpiryService)

// WithExpiryBatchSize bounds how many customers one transaction handles.
func WithExpiryBatchSize(n int) ExpiryOption {
	return func(s *ExpiryService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithExpiryClock overrides the clock, primarily for tests.
func WithExpiryClock(now func() time.Time) ExpiryOption {
	return func(s *ExpiryService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewExpiryService constructs an ExpiryService.
func NewExpiryService(db *gorm.DB, opts ...ExpiryOption) (*ExpiryService, error) {
	if db == nil {
		return nil, errors.New("expiry service: db is required")
	}

	s := &ExpiryService{
		db:        db,
		now:       time.Now,
		batchSize: defaultExpiryBatchSize,
		retry:     retryPolicy{attempts: defaultMaxRetries, backoff: defaultRetryBackoff},
		log:       logger.WithModule("expiry"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SweepExpired unsubscribes all customers past their subscription end date
// and returns how many were updated.
func (s *ExpiryService) SweepExpired(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	now := s.now()

	var total int64
	for {
		var ids []string
		if err := s.db.WithContext(ctx).Model(&models.Customer{}).
			Where("is_subscribed = ? AND subscription_ends_at IS NOT NULL AND subscription_ends_at < ?", true, now).
			Limit(s.batchSize).
			Pluck("id", &ids).Error; err != nil {
			return total, fmt.Errorf("expiry service: select batch: %w", err)
		}
		if len(ids) == 0 {
			return total, nil
		}

		_, err := s.retry.run(ctx, func() error {
			return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				if err := tx.Model(&models.Customer{}).
					Where("id IN ?", ids).
					Update("is_subscribed", false).Error; err != nil {
					return err
				}
				return tx.Create(&models.ActivityLog{
					Actor:  "scheduler",
					Action: "subscription.expired",
					Detail: fmt.Sprintf("unsubscribed %d customers", len(ids)),
				}).Error
			})
		})
		if err != nil {
			return total, fmt.Errorf("expiry service: sweep batch: %w", err)
		}

		total += int64(len(ids))
		metrics.SubscriptionsExpired.Add(float64(len(ids)))
		s.log.Info("expired subscriptions batch processed", zap.Int("count", len(ids)))

		if len(ids) < s.batchSize {
			return total, nil
		}
	}
}
