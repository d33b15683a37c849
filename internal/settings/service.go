package settings

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tazhate/noxd/internal/domain"
	"github.com/tazhate/noxd/internal/storage"
)

// KV is the persistence surface the service needs.
type KV interface {
	GetItem(key string, dst any) (bool, error)
	SetItem(key string, v any) error
	DeleteItem(key string) error
}

// Service owns the global wake/TTS settings. Values are cached in memory and
// written through to the store on every set. Readers at fire time always see
// the latest values; schedule-time callers take a Wake() snapshot.
type Service struct {
	mu sync.RWMutex
	kv KV

	wakeEnabled bool
	sass        domain.SassLevel
	ttsEnabled  bool
	ttsOptions  domain.TTSOptions
	cloudAPIKey string
}

func NewService(kv KV) (*Service, error) {
	s := &Service{
		kv:         kv,
		sass:       domain.SassMild,
		ttsOptions: domain.DefaultTTSOptions(),
	}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

func (s *Service) load() error {
	if _, err := s.kv.GetItem(storage.KeyWakeMessagesEnabled, &s.wakeEnabled); err != nil {
		return err
	}
	var sass string
	if found, err := s.kv.GetItem(storage.KeyWakeSassLevel, &sass); err != nil {
		return err
	} else if found && domain.SassLevel(sass).Valid() {
		s.sass = domain.SassLevel(sass)
	}
	if _, err := s.kv.GetItem(storage.KeyTTSEnabled, &s.ttsEnabled); err != nil {
		return err
	}
	if found, err := s.kv.GetItem(storage.KeyTTSLanguage, &s.ttsOptions.Language); err != nil {
		return err
	} else if !found {
		s.ttsOptions.Language = "en-US"
	}
	if _, err := s.kv.GetItem(storage.KeyTTSPitch, &s.ttsOptions.Pitch); err != nil {
		return err
	}
	if _, err := s.kv.GetItem(storage.KeyTTSRate, &s.ttsOptions.Rate); err != nil {
		return err
	}
	s.ttsOptions.Clamp()
	if _, err := s.kv.GetItem(storage.KeyCloudTTSAPIKey, &s.cloudAPIKey); err != nil {
		return err
	}
	return nil
}

// Wake returns a snapshot of the wake-message settings; the alarm store
// freezes this into trigger payloads at schedule time.
func (s *Service) Wake() domain.WakeSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.WakeSettings{MessagesEnabled: s.wakeEnabled, Sass: s.sass}
}

func (s *Service) SetWakeMessagesEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.SetItem(storage.KeyWakeMessagesEnabled, enabled); err != nil {
		return err
	}
	s.wakeEnabled = enabled
	return nil
}

func (s *Service) SetSassLevel(level domain.SassLevel) error {
	if !level.Valid() {
		return fmt.Errorf("unknown sass level: %q", level)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.SetItem(storage.KeyWakeSassLevel, string(level)); err != nil {
		return err
	}
	s.sass = level
	return nil
}

// TTSEnabled is read live at fire time, not from the trigger snapshot.
func (s *Service) TTSEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ttsEnabled
}

func (s *Service) SetTTSEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.SetItem(storage.KeyTTSEnabled, enabled); err != nil {
		return err
	}
	s.ttsEnabled = enabled
	return nil
}

// TTSOptions returns the user's base speech options.
func (s *Service) TTSOptions() domain.TTSOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ttsOptions
}

// SetTTSOptions clamps pitch and rate before persisting. The sass rate
// multiplier is never folded into the stored rate.
func (s *Service) SetTTSOptions(opts domain.TTSOptions) error {
	opts.Clamp()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.SetItem(storage.KeyTTSLanguage, opts.Language); err != nil {
		return err
	}
	if err := s.kv.SetItem(storage.KeyTTSPitch, opts.Pitch); err != nil {
		return err
	}
	if err := s.kv.SetItem(storage.KeyTTSRate, opts.Rate); err != nil {
		return err
	}
	s.ttsOptions = opts
	return nil
}

func (s *Service) CloudAPIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloudAPIKey
}

func (s *Service) SetCloudAPIKey(key string) error {
	key = strings.TrimSpace(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == "" {
		if err := s.kv.DeleteItem(storage.KeyCloudTTSAPIKey); err != nil {
			return err
		}
		s.cloudAPIKey = ""
		return nil
	}
	if err := s.kv.SetItem(storage.KeyCloudTTSAPIKey, key); err != nil {
		return err
	}
	s.cloudAPIKey = key
	return nil
}
