package sched

import (
	"context"
	"log"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/tazhate/noxd/internal/domain"
	"github.com/tazhate/noxd/internal/notify"
)

// FireFunc receives the trigger payload when a wake event is delivered.
type FireFunc func(payload domain.WakePayload)

// Scheduler arms and cancels wake triggers. Handles are opaque tokens; the
// alarm store owns them.
type Scheduler interface {
	// ScheduleOneShot arms a single delivery at the next wall-clock
	// occurrence of hour:minute (tomorrow if today's is already past).
	ScheduleOneShot(alarmID string, hour, minute int, payload domain.WakePayload) (string, error)

	// ScheduleWeekly arms delivery on every occurrence of the weekday at
	// hour:minute until canceled.
	ScheduleWeekly(alarmID string, weekday domain.Weekday, hour, minute int, payload domain.WakePayload) (string, error)

	// Cancel removes a trigger. Unknown or already-fired handles no-op.
	Cancel(handle string) error

	// RequestPermission reports whether wake delivery is authorized. Safe
	// to call repeatedly.
	RequestPermission(ctx context.Context) (bool, error)
}

// NextOneShot computes the next wall-clock occurrence of hour:minute
// strictly after now.
func NextOneShot(now time.Time, hour, minute int) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}

// NextWeekly computes the next occurrence of the weekday at hour:minute
// strictly after now.
func NextWeekly(now time.Time, weekday domain.Weekday, hour, minute int) (time.Time, error) {
	dtstart := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location()).AddDate(0, 0, -7)
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekday(weekday)},
		Dtstart:   dtstart,
	})
	if err != nil {
		return time.Time{}, err
	}
	return r.After(now, false), nil
}

func rruleWeekday(w domain.Weekday) rrule.Weekday {
	switch w {
	case domain.Sunday:
		return rrule.SU
	case domain.Monday:
		return rrule.MO
	case domain.Tuesday:
		return rrule.TU
	case domain.Wednesday:
		return rrule.WE
	case domain.Thursday:
		return rrule.TH
	case domain.Friday:
		return rrule.FR
	default:
		return rrule.SA
	}
}

// deliver pushes the external notification (best-effort) and always invokes
// the in-process fire callback, so in-app effects run even when push
// delivery is unavailable.
func deliver(n notify.Notifier, fire FireFunc, p domain.WakePayload) {
	if n != nil && n.Ready() {
		body := p.Label
		if body == "" {
			body = "Time to wake up!"
		}
		if err := n.Push("Nox Alarm", body); err != nil {
			log.Printf("Push delivery failed for alarm %s: %v", p.AlarmID, err)
		}
	}
	if fire != nil {
		fire(p)
	}
}
