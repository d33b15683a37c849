package tones

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/tazhate/noxd/internal/domain"
)

func TestGenerateProducesValidWAVHeader(t *testing.T) {
	data := Generate(domain.ThemePulsar)

	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatal("missing RIFF magic")
	}
	if string(data[8:12]) != "WAVE" {
		t.Fatal("missing WAVE magic")
	}

	var sampleRate uint32
	binary.Read(bytes.NewReader(data[24:28]), binary.LittleEndian, &sampleRate)
	if sampleRate != SampleRate {
		t.Fatalf("sample rate %d, want %d", sampleRate, SampleRate)
	}

	var channels uint16
	binary.Read(bytes.NewReader(data[22:24]), binary.LittleEndian, &channels)
	if channels != 1 {
		t.Fatalf("expected mono, got %d channels", channels)
	}
}

func TestGenerateDurationMatches(t *testing.T) {
	data := Generate(domain.ThemeSaturn)
	// 44-byte header plus 2 bytes per sample.
	want := 44 + SampleRate*2*2
	if len(data) != want {
		t.Fatalf("file size %d, want %d", len(data), want)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a := Generate(domain.ThemeQuasar)
	b := Generate(domain.ThemeQuasar)
	if !bytes.Equal(a, b) {
		t.Fatal("same theme must yield byte-identical audio")
	}
}

func TestGenerateThemesDiffer(t *testing.T) {
	seen := map[string]domain.Theme{}
	for _, theme := range domain.Themes {
		key := string(Generate(theme)[44:144])
		if other, dup := seen[key]; dup {
			t.Fatalf("themes %s and %s produced identical audio", theme, other)
		}
		seen[key] = theme
	}
}

func TestGenerateUnknownThemeFallsBack(t *testing.T) {
	got := Generate(domain.Theme("comet"))
	want := Generate(domain.ThemeNebula)
	if !bytes.Equal(got, want) {
		t.Fatal("unknown theme must produce the nebula tone")
	}
}

func TestCacheGeneratesOncePerTheme(t *testing.T) {
	c := NewCache(t.TempDir())

	first, err := c.ToneURI(domain.ThemePulsar)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.ToneURI(domain.ThemePulsar)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("paths differ: %q vs %q", first, second)
	}
	if c.Generated() != 1 {
		t.Fatalf("expected 1 synthesis, got %d", c.Generated())
	}

	if _, err := c.ToneURI(domain.ThemeSaturn); err != nil {
		t.Fatal(err)
	}
	if c.Generated() != 2 {
		t.Fatalf("expected 2 syntheses after second theme, got %d", c.Generated())
	}
}

func TestCacheWritesPlayableFile(t *testing.T) {
	c := NewCache(t.TempDir())
	path, err := c.ToneURI(domain.ThemeNebula)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, Generate(domain.ThemeNebula)) {
		t.Fatal("written file differs from generated audio")
	}
}
