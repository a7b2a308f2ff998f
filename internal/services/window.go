package services

import (
	"time"

	"github.com/aschalew-star/tenderalert/internal/models"
)

// Delivery window bounds, inclusive hours on a 24h clock.
// MORNING [0,11], AFTERNOON [12,17], EVENING [18,23].
const (
	afternoonStartHour = 12
	eveningStartHour   = 18
)

// DeliveryDecision is the outcome of the time-window policy: deliver now, or
// defer until NotifyAt.
type DeliveryDecision struct {
	SendNow  bool
	NotifyAt time.Time
}

// ResolveDelivery decides, purely from the reminder type and the current
// time, whether a matched notification goes out immediately or is deferred to
// the next occurrence of the reminder's window. Unknown types (including
// IMMEDIATE) always deliver now. The location of now determines the local
// day boundaries.
func ResolveDelivery(reminderType string, now time.Time) DeliveryDecision {
	hour := now.Hour()

	switch reminderType {
	case models.ReminderMorning:
		if hour < afternoonStartHour {
			return DeliveryDecision{SendNow: true}
		}
		// The morning window starts at midnight, so a missed morning is
		// always tomorrow 00:00, never later today.
		return DeliveryDecision{NotifyAt: atHour(now.AddDate(0, 0, 1), 0)}

	case models.ReminderAfternoon:
		if hour >= afternoonStartHour && hour < eveningStartHour {
			return DeliveryDecision{SendNow: true}
		}
		if hour < afternoonStartHour {
			return DeliveryDecision{NotifyAt: atHour(now, afternoonStartHour)}
		}
		return DeliveryDecision{NotifyAt: atHour(now.AddDate(0, 0, 1), afternoonStartHour)}

	case models.ReminderEvening:
		if hour >= eveningStartHour {
			return DeliveryDecision{SendNow: true}
		}
		return DeliveryDecision{NotifyAt: atHour(now, eveningStartHour)}
	}

	return DeliveryDecision{SendNow: true}
}

func atHour(t time.Time, hour int) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, hour, 0, 0, 0, t.Location())
}
