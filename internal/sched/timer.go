package sched

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tazhate/noxd/internal/domain"
	"github.com/tazhate/noxd/internal/notify"
)

// TimerScheduler is the restricted backend used when no cron runner should
// own the process: every trigger is a plain in-process timer. Weekly triggers
// arm only their next occurrence and do not re-arm after firing; callers that
// need recurrence must reschedule.
type TimerScheduler struct {
	notifier notify.Notifier
	fire     FireFunc
	loc      *time.Location

	mu      sync.Mutex
	timers  map[string]*time.Timer
	granted *bool

	nowFn func() time.Time
}

func NewTimerScheduler(loc *time.Location, notifier notify.Notifier, fire FireFunc) *TimerScheduler {
	return &TimerScheduler{
		notifier: notifier,
		fire:     fire,
		loc:      loc,
		timers:   make(map[string]*time.Timer),
		nowFn:    func() time.Time { return time.Now().In(loc) },
	}
}

func (s *TimerScheduler) ScheduleOneShot(alarmID string, hour, minute int, payload domain.WakePayload) (string, error) {
	target := NextOneShot(s.nowFn(), hour, minute)
	return s.arm(target, payload), nil
}

func (s *TimerScheduler) ScheduleWeekly(alarmID string, weekday domain.Weekday, hour, minute int, payload domain.WakePayload) (string, error) {
	if !weekday.Valid() {
		return "", fmt.Errorf("invalid weekday: %d", int(weekday))
	}
	target, err := NextWeekly(s.nowFn(), weekday, hour, minute)
	if err != nil {
		return "", err
	}
	return s.arm(target, payload), nil
}

func (s *TimerScheduler) arm(target time.Time, payload domain.WakePayload) string {
	handle := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[handle] = time.AfterFunc(target.Sub(s.nowFn()), func() {
		s.mu.Lock()
		delete(s.timers, handle)
		s.mu.Unlock()
		deliver(s.notifier, s.fire, payload)
	})
	return handle
}

func (s *TimerScheduler) Cancel(handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[handle]; ok {
		timer.Stop()
		delete(s.timers, handle)
	}
	return nil
}

func (s *TimerScheduler) RequestPermission(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.granted != nil {
		return *s.granted, nil
	}
	granted := s.notifier == nil || s.notifier.Ready()
	s.granted = &granted
	return granted, nil
}

func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for handle, timer := range s.timers {
		timer.Stop()
		delete(s.timers, handle)
	}
}
