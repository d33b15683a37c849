package sched

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/tazhate/noxd/internal/domain"
	"github.com/tazhate/noxd/internal/notify"
)

// CronScheduler is the native backend: weekly triggers live as cron entries
// and keep firing across the daemon's lifetime, with delivery pushed to the
// configured notification channel in addition to the in-process callback.
type CronScheduler struct {
	cron     *cron.Cron
	notifier notify.Notifier
	fire     FireFunc
	loc      *time.Location

	mu       sync.Mutex
	weekly   map[string]cron.EntryID
	oneShots map[string]*time.Timer
	granted  *bool

	nowFn func() time.Time
}

func NewCronScheduler(loc *time.Location, notifier notify.Notifier, fire FireFunc) *CronScheduler {
	return &CronScheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		notifier: notifier,
		fire:     fire,
		loc:      loc,
		weekly:   make(map[string]cron.EntryID),
		oneShots: make(map[string]*time.Timer),
		nowFn:    func() time.Time { return time.Now().In(loc) },
	}
}

func (s *CronScheduler) Start() {
	s.cron.Start()
}

func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.mu.Lock()
	defer s.mu.Unlock()
	for handle, timer := range s.oneShots {
		timer.Stop()
		delete(s.oneShots, handle)
	}
}

func (s *CronScheduler) ScheduleOneShot(alarmID string, hour, minute int, payload domain.WakePayload) (string, error) {
	handle := uuid.New().String()
	target := NextOneShot(s.nowFn(), hour, minute)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.oneShots[handle] = time.AfterFunc(target.Sub(s.nowFn()), func() {
		s.mu.Lock()
		delete(s.oneShots, handle)
		s.mu.Unlock()
		deliver(s.notifier, s.fire, payload)
	})
	return handle, nil
}

func (s *CronScheduler) ScheduleWeekly(alarmID string, weekday domain.Weekday, hour, minute int, payload domain.WakePayload) (string, error) {
	if !weekday.Valid() {
		return "", fmt.Errorf("invalid weekday: %d", int(weekday))
	}

	// Standard cron weekday numbering: 0=Sunday.
	spec := fmt.Sprintf("%d %d * * %d", minute, hour, int(weekday)-1)
	entryID, err := s.cron.AddFunc(spec, func() {
		deliver(s.notifier, s.fire, payload)
	})
	if err != nil {
		return "", fmt.Errorf("add cron entry: %w", err)
	}

	handle := uuid.New().String()
	s.mu.Lock()
	s.weekly[handle] = entryID
	s.mu.Unlock()
	return handle, nil
}

func (s *CronScheduler) Cancel(handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.weekly[handle]; ok {
		s.cron.Remove(entryID)
		delete(s.weekly, handle)
		return nil
	}
	if timer, ok := s.oneShots[handle]; ok {
		timer.Stop()
		delete(s.oneShots, handle)
	}
	// Unknown or already-fired handles are a no-op.
	return nil
}

// RequestPermission probes the notifier's credentials once and memoizes the
// answer. With no notifier configured, delivery is in-process only and is
// always authorized.
func (s *CronScheduler) RequestPermission(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.granted != nil {
		return *s.granted, nil
	}
	granted := s.notifier == nil || s.notifier.Ready()
	s.granted = &granted
	return granted, nil
}
