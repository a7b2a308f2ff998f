package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/models"
	"github.com/aschalew-star/tenderalert/pkg/logger"
)

// MatcherService decides which reminders a newly created tender should
// notify, and routes each match either straight to the dispatcher or into the
// pending queue depending on the reminder's delivery window.
type MatcherService struct {
	db         *gorm.DB
	dispatcher *DispatcherService
	pending    *PendingService
	now        func() time.Time
	loc        *time.Location
	log        *zap.Logger
}

// MatcherOption customises the MatcherService.
type MatcherOption func(*MatcherService)

// WithMatcherClock overrides the clock, primarily for tests.
func WithMatcherClock(now func() time.Time) MatcherOption {
	return func(s *MatcherService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation fixes the timezone delivery windows are evaluated in.
func WithLocation(loc *time.Location) MatcherOption {
	return func(s *MatcherService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewMatcherService constructs a MatcherService.
func NewMatcherService(db *gorm.DB, dispatcher *DispatcherService, pending *PendingService, opts ...MatcherOption) (*MatcherService, error) {
	if db == nil {
		return nil, errors.New("matcher service: db is required")
	}
	if dispatcher == nil {
		return nil, errors.New("matcher service: dispatcher is required")
	}
	if pending == nil {
		return nil, errors.New("matcher service: pending queue is required")
	}

	s := &MatcherService{
		db:         db,
		dispatcher: dispatcher,
		pending:    pending,
		now:        time.Now,
		loc:        time.Local,
		log:        logger.WithModule("matcher"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// QueueNotificationsForNewTender fans a newly created tender out to every
// matching reminder. Fire-and-forget: failures are logged, never returned,
// and one reminder's failure does not stop the run. Each recipient is
// notified at most once per invocation regardless of how many of their
// reminders match.
func (s *MatcherService) QueueNotificationsForNewTender(ctx context.Context, tenderID string) {
	ctx = ensureContext(ctx)

	tender, err := s.loadTender(ctx, tenderID)
	if err != nil {
		s.log.Error("load tender failed", zap.Error(err), zap.String("tender_id", tenderID))
		return
	}

	var reminders []models.Reminder
	if err := s.db.WithContext(ctx).
		Preload("Categories").
		Preload("Subcategories").
		Preload("Regions").
		Find(&reminders).Error; err != nil {
		s.log.Error("load reminders failed", zap.Error(err), zap.String("tender_id", tenderID))
		return
	}

	now := s.now().In(s.loc)
	notified := make(map[string]struct{}, len(reminders))

	for _, reminder := range reminders {
		recipient, ok := recipientFromColumns(reminder.UserID, reminder.CustomerID)
		if !ok {
			s.log.Warn("reminder has no recipient", zap.String("reminder_id", reminder.ID))
			continue
		}
		if _, done := notified[recipient.Key()]; done {
			continue
		}

		matched, dims := matchReminder(reminder, tender)
		if !matched {
			continue
		}

		message := buildMatchMessage(tender, dims)
		decision := ResolveDelivery(reminder.Type, now)

		if decision.SendNow {
			s.dispatcher.Dispatch(ctx, DispatchInput{
				Recipient: recipient,
				Tender:    tender,
				Type:      models.NotificationTypeTender,
				Subject:   tenderSubject(tender),
				Message:   message,
			})
		} else {
			if err := s.pending.Enqueue(ctx, EnqueueInput{
				Recipient: recipient,
				TenderID:  tender.ID,
				Type:      models.NotificationTypeTender,
				Message:   message,
				NotifyAt:  decision.NotifyAt,
			}); err != nil {
				s.log.Error("enqueue pending notification failed",
					zap.Error(err),
					zap.Stringer("recipient", recipient),
					zap.String("tender_id", tender.ID))
			}
		}

		notified[recipient.Key()] = struct{}{}
	}
}

func (s *MatcherService) loadTender(ctx context.Context, tenderID string) (*models.Tender, error) {
	var tender models.Tender
	if err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Subcategory").
		Preload("Region").
		First(&tender, "id = ?", tenderID).Error; err != nil {
		return nil, fmt.Errorf("matcher service: load tender: %w", err)
	}
	return &tender, nil
}

// matchDimensions records which filter dimensions produced the match, for the
// context message.
type matchDimensions struct {
	category    bool
	subcategory bool
	region      bool
	unfiltered  bool
}

// matchReminder applies the filter semantics: a reminder matches when any of
// its category/subcategory/region sets contains the tender's value, or when
// it has no filters at all. Region matching only applies to tenders that
// carry a region.
func matchReminder(reminder models.Reminder, tender *models.Tender) (bool, matchDimensions) {
	var dims matchDimensions

	if !reminder.HasFilters() {
		dims.unfiltered = true
		return true, dims
	}

	for _, category := range reminder.Categories {
		if category.ID == tender.CategoryID {
			dims.category = true
			break
		}
	}
	for _, subcategory := range reminder.Subcategories {
		if subcategory.ID == tender.SubcategoryID {
			dims.subcategory = true
			break
		}
	}
	if tender.RegionID != nil {
		for _, region := range reminder.Regions {
			if region.ID == *tender.RegionID {
				dims.region = true
				break
			}
		}
	}

	return dims.category || dims.subcategory || dims.region, dims
}

// buildMatchMessage lists the tender title and every matched filter dimension.
func buildMatchMessage(tender *models.Tender, dims matchDimensions) string {
	if dims.unfiltered {
		return fmt.Sprintf("New tender %q matches your reminder (no specific filters set).", tender.Title)
	}

	var parts []string
	if dims.category && tender.Category != nil {
		parts = append(parts, "category: "+tender.Category.Name)
	}
	if dims.subcategory && tender.Subcategory != nil {
		parts = append(parts, "subcategory: "+tender.Subcategory.Name)
	}
	if dims.region && tender.Region != nil {
		parts = append(parts, "region: "+tender.Region.Name)
	}

	return fmt.Sprintf("New tender %q matches your reminder (%s).", tender.Title, strings.Join(parts, ", "))
}

func tenderSubject(tender *models.Tender) string {
	return "New tender: " + tender.Title
}
