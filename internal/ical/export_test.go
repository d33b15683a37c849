package ical

import (
	"strings"
	"testing"
	"time"

	"github.com/tazhate/noxd/internal/domain"
)

var exportNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) // a Tuesday

func TestExportRepeatingAlarmHasWeeklyRRule(t *testing.T) {
	data, err := Export([]domain.Alarm{{
		ID: "a1", Label: "Work", Hour: 7, Minute: 30, Enabled: true,
		SoundTheme: domain.ThemePulsar,
		Repeat:     []domain.Weekday{domain.Monday, domain.Wednesday, domain.Friday},
	}}, exportNow)
	if err != nil {
		t.Fatal(err)
	}

	out := string(data)
	if !strings.Contains(out, "RRULE:FREQ=WEEKLY;BYDAY=MO,WE,FR") {
		t.Fatalf("missing weekly rule:\n%s", out)
	}
	if !strings.Contains(out, "SUMMARY:Work") {
		t.Fatalf("missing summary:\n%s", out)
	}
	if !strings.Contains(out, "UID:a1@noxd") {
		t.Fatalf("missing uid:\n%s", out)
	}
}

func TestExportOneShotHasNoRRule(t *testing.T) {
	data, err := Export([]domain.Alarm{{
		ID: "a2", Hour: 6, Minute: 0, Enabled: true, SoundTheme: domain.ThemeNebula,
	}}, exportNow)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "RRULE") {
		t.Fatalf("one-shot must not recur:\n%s", data)
	}
	if !strings.Contains(string(data), "SUMMARY:Alarm 06:00") {
		t.Fatalf("expected time-based summary:\n%s", data)
	}
}

func TestExportDisabledAlarmIsCancelled(t *testing.T) {
	data, err := Export([]domain.Alarm{{
		ID: "a3", Hour: 8, Minute: 0, SoundTheme: domain.ThemeQuasar,
	}}, exportNow)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "STATUS:CANCELLED") {
		t.Fatalf("disabled alarm must be cancelled:\n%s", data)
	}
}

func TestExportEmptyListIsValidCalendar(t *testing.T) {
	data, err := Export(nil, exportNow)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "BEGIN:VCALENDAR") || !strings.Contains(out, "END:VCALENDAR") {
		t.Fatalf("malformed empty calendar:\n%s", out)
	}
}

func TestExportDTStartIsNextOccurrence(t *testing.T) {
	// Tuesday noon asking for Tuesday 07:30: next week.
	data, err := Export([]domain.Alarm{{
		ID: "a4", Hour: 7, Minute: 30, Enabled: true, SoundTheme: domain.ThemeSaturn,
		Repeat: []domain.Weekday{domain.Tuesday},
	}}, exportNow)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "DTSTART:20260317T073000") {
		t.Fatalf("wrong anchor:\n%s", data)
	}
}
