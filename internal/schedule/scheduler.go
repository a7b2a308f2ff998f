package schedule

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/aschalew-star/tenderalert/internal/services"
	"github.com/aschalew-star/tenderalert/pkg/logger"
)

const (
	defaultPendingSpec = "@every 10m"
	defaultExpirySpec  = "@daily"
)

// Scheduler coordinates the recurring background sweeps: promoting due
// pending notifications and expiring lapsed subscriptions.
type Scheduler struct {
	pending *services.PendingService
	expiry  *services.ExpiryService
	cron    *cron.Cron
	log     *zap.Logger

	pendingSchedule string
	expirySchedule  string
}

// Option customises the Scheduler.
type Option func(*Scheduler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithPendingSchedule overrides the cron specification for the pending-queue
// sweep.
func WithPendingSchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.pendingSchedule = spec
		}
	}
}

// WithExpirySchedule overrides the cron specification for the subscription
// expiry sweep.
func WithExpirySchedule(spec string) Option {
	return func(s *Scheduler) {
		if spec != "" {
			s.expirySchedule = spec
		}
	}
}

// New constructs a Scheduler. A nil service disables the corresponding job.
func New(pending *services.PendingService, expiry *services.ExpiryService, opts ...Option) *Scheduler {
	s := &Scheduler{
		pending:         pending,
		expiry:          expiry,
		pendingSchedule: defaultPendingSpec,
		expirySchedule:  defaultExpirySpec,
		log:             logger.WithModule("schedule"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return s
}

// Start registers the sweeps with the cron scheduler and launches it.
func (s *Scheduler) Start() error {
	if s.pending != nil {
		if _, err := s.cron.AddFunc(s.pendingSchedule, func() {
			if err := s.pending.ProcessDue(context.Background()); err != nil {
				s.log.Warn("pending sweep failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if s.expiry != nil {
		if _, err := s.cron.AddFunc(s.expirySchedule, func() {
			start := time.Now()
			count, err := s.expiry.SweepExpired(context.Background())
			if err != nil {
				s.log.Warn("expiry sweep failed", zap.Error(err))
				return
			}
			if count > 0 {
				s.log.Info("expiry sweep finished",
					zap.Int64("expired", count),
					zap.Duration("took", time.Since(start)))
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes every configured sweep sequentially. Used in tests and
// during graceful shutdown to drain due work.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if s.pending != nil {
		if err := s.pending.ProcessDue(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if s.expiry != nil {
		if _, err := s.expiry.SweepExpired(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}
