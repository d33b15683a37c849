package settings

import (
	"encoding/json"
	"testing"

	"github.com/tazhate/noxd/internal/domain"
	"github.com/tazhate/noxd/internal/storage"
)

type memKV struct {
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) GetItem(key string, dst any) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(raw), dst)
}

func (m *memKV) SetItem(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = string(raw)
	return nil
}

func (m *memKV) DeleteItem(key string) error {
	delete(m.data, key)
	return nil
}

func TestDefaultsOnEmptyStore(t *testing.T) {
	s, err := NewService(newMemKV())
	if err != nil {
		t.Fatal(err)
	}
	wake := s.Wake()
	if wake.MessagesEnabled {
		t.Fatal("wake messages default off")
	}
	if wake.Sass != domain.SassMild {
		t.Fatalf("default sass %q, want mild", wake.Sass)
	}
	opts := s.TTSOptions()
	if opts.Language != "en-US" || opts.Pitch != 1.0 || opts.Rate != 1.0 {
		t.Fatalf("unexpected TTS defaults: %+v", opts)
	}
}

func TestSetTTSOptionsClampsBeforePersisting(t *testing.T) {
	kv := newMemKV()
	s, err := NewService(kv)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetTTSOptions(domain.TTSOptions{Language: "en-US", Pitch: 5.0, Rate: 0.1}); err != nil {
		t.Fatal(err)
	}

	opts := s.TTSOptions()
	if opts.Pitch != domain.MaxTTSPitch {
		t.Fatalf("pitch %v, want clamped to %v", opts.Pitch, domain.MaxTTSPitch)
	}
	if opts.Rate != domain.MinTTSRate {
		t.Fatalf("rate %v, want clamped to %v", opts.Rate, domain.MinTTSRate)
	}

	var persisted float64
	if found, err := kv.GetItem(storage.KeyTTSPitch, &persisted); err != nil || !found {
		t.Fatalf("pitch not persisted: found=%v err=%v", found, err)
	}
	if persisted != domain.MaxTTSPitch {
		t.Fatalf("persisted pitch %v is unclamped", persisted)
	}
}

func TestSetSassLevelRejectsUnknown(t *testing.T) {
	s, err := NewService(newMemKV())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetSassLevel(domain.SassLevel("nuclear")); err == nil {
		t.Fatal("expected validation error")
	}
	if err := s.SetSassLevel(domain.SassSpicy); err != nil {
		t.Fatal(err)
	}
	if s.Wake().Sass != domain.SassSpicy {
		t.Fatalf("sass not updated: %q", s.Wake().Sass)
	}
}

func TestEmptyAPIKeyDeletesStoredKey(t *testing.T) {
	kv := newMemKV()
	s, err := NewService(kv)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SetCloudAPIKey("secret"); err != nil {
		t.Fatal(err)
	}
	if _, ok := kv.data[storage.KeyCloudTTSAPIKey]; !ok {
		t.Fatal("key not persisted")
	}

	if err := s.SetCloudAPIKey("  "); err != nil {
		t.Fatal(err)
	}
	if _, ok := kv.data[storage.KeyCloudTTSAPIKey]; ok {
		t.Fatal("blank key must delete the stored value")
	}
	if s.CloudAPIKey() != "" {
		t.Fatalf("cached key not cleared: %q", s.CloudAPIKey())
	}
}

func TestSettingsSurviveReload(t *testing.T) {
	kv := newMemKV()
	s, err := NewService(kv)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetWakeMessagesEnabled(true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetSassLevel(domain.SassUnhinged); err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewService(kv)
	if err != nil {
		t.Fatal(err)
	}
	wake := reloaded.Wake()
	if !wake.MessagesEnabled || wake.Sass != domain.SassUnhinged {
		t.Fatalf("settings lost across reload: %+v", wake)
	}
}
