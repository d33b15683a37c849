package alarms

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/tazhate/noxd/internal/domain"
	"github.com/tazhate/noxd/internal/sched"
	"github.com/tazhate/noxd/internal/storage"
)

// KV is the slice of the storage layer the alarm store uses.
type KV interface {
	GetItem(key string, dst any) (bool, error)
	SetItem(key string, v any) error
}

// WakeSource supplies the wake-message settings frozen into trigger payloads
// at schedule time.
type WakeSource interface {
	Wake() domain.WakeSettings
}

// MessagePicker selects a wake-up phrase for a sass level.
type MessagePicker interface {
	Pick(level domain.SassLevel) string
}

// Store owns the alarm list. Every mutation rewrites the full list under
// KeyAlarms, and scheduling is kept in lock-step with persistence: triggers
// are always canceled before new ones are registered, and an enabled alarm
// holds exactly one handle per physical trigger.
type Store struct {
	mu        sync.Mutex
	kv        KV
	scheduler sched.Scheduler
	settings  WakeSource
	catalog   MessagePicker
	onChange  func()
}

func NewStore(kv KV, scheduler sched.Scheduler, settings WakeSource, catalog MessagePicker) *Store {
	return &Store{
		kv:        kv,
		scheduler: scheduler,
		settings:  settings,
		catalog:   catalog,
	}
}

// OnChange registers a callback invoked after every successful persist.
// Used to refresh derived views such as the calendar export.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// List returns the persisted alarms.
func (s *Store) List() ([]domain.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the alarm with the given id, or (nil, nil) if absent.
func (s *Store) Get(id string) (*domain.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			a := list[i]
			return &a, nil
		}
	}
	return nil, nil
}

// NewAlarmInput holds the caller-supplied fields of a new alarm.
type NewAlarmInput struct {
	Label      string           `json:"label"`
	Hour       int              `json:"hour"`
	Minute     int              `json:"minute"`
	Repeat     []domain.Weekday `json:"repeat"`
	Enabled    bool             `json:"enabled"`
	SoundTheme domain.Theme     `json:"soundTheme"`
	Vibrate    bool             `json:"vibrate"`
}

// Add creates and persists a new alarm. If the alarm is enabled and trigger
// registration fails, the alarm is still persisted, but disabled and without
// handles, and the error is returned.
func (s *Store) Add(ctx context.Context, in NewAlarmInput) (*domain.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	theme := in.SoundTheme
	if !theme.Valid() {
		theme = domain.ThemeNebula
	}
	alarm := domain.Alarm{
		ID:         uuid.New().String(),
		Label:      in.Label,
		Hour:       in.Hour,
		Minute:     in.Minute,
		Repeat:     append([]domain.Weekday(nil), in.Repeat...),
		Enabled:    in.Enabled,
		SoundTheme: theme,
		Vibrate:    in.Vibrate,
	}
	if err := alarm.Validate(); err != nil {
		return nil, err
	}

	list, err := s.load()
	if err != nil {
		return nil, err
	}

	var regErr error
	if alarm.Enabled {
		handles, err := s.register(ctx, alarm)
		if err != nil {
			alarm.Enabled = false
			alarm.TriggerHandles = nil
			regErr = err
		} else {
			alarm.TriggerHandles = handles
		}
	}

	list = append(list, alarm)
	if err := s.save(list); err != nil {
		return nil, err
	}
	if regErr != nil {
		return &alarm, fmt.Errorf("register triggers: %w", regErr)
	}
	return &alarm, nil
}

// Update applies a partial update. Schedule-affecting changes cancel the
// alarm's triggers first and re-register from the merged record; cosmetic
// patches (label, theme, vibrate) leave the armed triggers alone.
func (s *Store) Update(ctx context.Context, id string, patch domain.AlarmPatch) (*domain.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return nil, err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return nil, fmt.Errorf("alarm %s not found", id)
	}

	updated := patch.Apply(list[idx])
	if err := updated.Validate(); err != nil {
		return nil, err
	}

	var regErr error
	if patch.TouchesSchedule() {
		s.cancelAll(list[idx].TriggerHandles)
		updated.TriggerHandles = nil
		if updated.Enabled {
			handles, err := s.register(ctx, updated)
			if err != nil {
				updated.Enabled = false
				regErr = err
			} else {
				updated.TriggerHandles = handles
			}
		}
	}

	list[idx] = updated
	if err := s.save(list); err != nil {
		return nil, err
	}
	if regErr != nil {
		return &updated, fmt.Errorf("register triggers: %w", regErr)
	}
	return &updated, nil
}

// Toggle flips an alarm's enabled state. Toggling an unknown id is a no-op.
func (s *Store) Toggle(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return nil
	}

	alarm := list[idx]
	var regErr error
	if alarm.Enabled {
		s.cancelAll(alarm.TriggerHandles)
		alarm.Enabled = false
		alarm.TriggerHandles = nil
	} else {
		handles, err := s.register(ctx, alarm)
		if err != nil {
			regErr = err
		} else {
			alarm.Enabled = true
			alarm.TriggerHandles = handles
		}
	}

	list[idx] = alarm
	if err := s.save(list); err != nil {
		return err
	}
	if regErr != nil {
		return fmt.Errorf("register triggers: %w", regErr)
	}
	return nil
}

// Remove cancels an alarm's triggers and deletes it. Removing an unknown id
// is a no-op.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return nil
	}

	s.cancelAll(list[idx].TriggerHandles)
	list = append(list[:idx], list[idx+1:]...)
	return s.save(list)
}

// DismissOneShot clears the fired one-shot's stale handle and disables it.
// Repeating alarms keep their handles; the scheduler re-fires them.
func (s *Store) DismissOneShot(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return err
	}
	idx := indexOf(list, id)
	if idx < 0 {
		return nil
	}
	if !list[idx].IsOneShot() {
		return nil
	}
	list[idx].Enabled = false
	list[idx].TriggerHandles = nil
	return s.save(list)
}

// RescheduleAll re-registers triggers for every enabled alarm. Run at boot:
// handles persisted by a previous process are dead, so each enabled alarm's
// stale handles are best-effort canceled and replaced.
func (s *Store) RescheduleAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil {
		return err
	}

	var firstErr error
	for i := range list {
		if !list[i].Enabled {
			continue
		}
		s.cancelAll(list[i].TriggerHandles)
		handles, err := s.register(ctx, list[i])
		if err != nil {
			log.Printf("Rescheduling alarm %s failed: %v", list[i].ID, err)
			list[i].Enabled = false
			list[i].TriggerHandles = nil
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		list[i].TriggerHandles = handles
	}
	if err := s.save(list); err != nil {
		return err
	}
	return firstErr
}

// register arms one trigger per physical occurrence and returns the handles.
// The wake message and sass level are frozen here, at schedule time. On any
// failure the handles registered so far are canceled.
func (s *Store) register(ctx context.Context, alarm domain.Alarm) ([]string, error) {
	granted, err := s.scheduler.RequestPermission(ctx)
	if err != nil {
		return nil, err
	}
	if !granted {
		return nil, fmt.Errorf("wake delivery not authorized")
	}

	payload := s.buildPayload(alarm)

	if alarm.IsOneShot() {
		handle, err := s.scheduler.ScheduleOneShot(alarm.ID, alarm.Hour, alarm.Minute, payload)
		if err != nil {
			return nil, err
		}
		return []string{handle}, nil
	}

	handles := make([]string, 0, len(alarm.Repeat))
	for _, day := range alarm.Repeat {
		handle, err := s.scheduler.ScheduleWeekly(alarm.ID, day, alarm.Hour, alarm.Minute, payload)
		if err != nil {
			s.cancelAll(handles)
			return nil, err
		}
		handles = append(handles, handle)
	}
	return handles, nil
}

func (s *Store) buildPayload(alarm domain.Alarm) domain.WakePayload {
	wake := s.settings.Wake()
	payload := domain.WakePayload{
		AlarmID: alarm.ID,
		Label:   alarm.Label,
		Sass:    wake.Sass,
		Theme:   alarm.SoundTheme,
		Vibrate: alarm.Vibrate,
	}
	if wake.MessagesEnabled {
		payload.Message = s.catalog.Pick(wake.Sass)
	}
	return payload
}

func (s *Store) cancelAll(handles []string) {
	for _, h := range handles {
		if err := s.scheduler.Cancel(h); err != nil {
			log.Printf("Canceling trigger %s failed: %v", h, err)
		}
	}
}

func (s *Store) load() ([]domain.Alarm, error) {
	var list []domain.Alarm
	if _, err := s.kv.GetItem(storage.KeyAlarms, &list); err != nil {
		return nil, fmt.Errorf("load alarms: %w", err)
	}
	return list, nil
}

func (s *Store) save(list []domain.Alarm) error {
	if err := s.kv.SetItem(storage.KeyAlarms, list); err != nil {
		return fmt.Errorf("save alarms: %w", err)
	}
	if s.onChange != nil {
		go s.onChange()
	}
	return nil
}

func indexOf(list []domain.Alarm, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
