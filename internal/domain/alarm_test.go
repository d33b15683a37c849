package domain

import "testing"

func TestAlarmValidate(t *testing.T) {
	tests := []struct {
		name    string
		alarm   Alarm
		wantErr bool
	}{
		{"valid", Alarm{Hour: 7, Minute: 30, SoundTheme: ThemePulsar}, false},
		{"hour too high", Alarm{Hour: 24, SoundTheme: ThemePulsar}, true},
		{"hour negative", Alarm{Hour: -1, SoundTheme: ThemePulsar}, true},
		{"minute too high", Alarm{Minute: 60, SoundTheme: ThemePulsar}, true},
		{"bad weekday", Alarm{SoundTheme: ThemePulsar, Repeat: []Weekday{8}}, true},
		{"bad theme", Alarm{SoundTheme: Theme("comet")}, true},
		{"all repeat days", Alarm{SoundTheme: ThemeSaturn, Repeat: []Weekday{1, 2, 3, 4, 5, 6, 7}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.alarm.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPatchTouchesSchedule(t *testing.T) {
	hour := 9
	label := "Gym"
	enabled := true

	if (&AlarmPatch{Label: &label}).TouchesSchedule() {
		t.Fatal("label change must not touch the schedule")
	}
	if !(&AlarmPatch{Hour: &hour}).TouchesSchedule() {
		t.Fatal("hour change touches the schedule")
	}
	if !(&AlarmPatch{Enabled: &enabled}).TouchesSchedule() {
		t.Fatal("enabled change touches the schedule")
	}
	if !(&AlarmPatch{Repeat: &[]Weekday{Monday}}).TouchesSchedule() {
		t.Fatal("repeat change touches the schedule")
	}
}

func TestPatchApplyLeavesUnsetFields(t *testing.T) {
	orig := Alarm{
		ID: "a1", Label: "Work", Hour: 7, Minute: 0,
		Repeat: []Weekday{Monday}, Enabled: true,
		SoundTheme: ThemePulsar, Vibrate: true,
	}
	hour := 8
	got := (&AlarmPatch{Hour: &hour}).Apply(orig)

	if got.Hour != 8 {
		t.Fatalf("hour not applied: %d", got.Hour)
	}
	if got.Label != "Work" || got.Minute != 0 || !got.Enabled || got.SoundTheme != ThemePulsar || !got.Vibrate {
		t.Fatalf("unset fields changed: %+v", got)
	}
	if len(got.Repeat) != 1 || got.Repeat[0] != Monday {
		t.Fatalf("repeat changed: %v", got.Repeat)
	}
}

func TestPatchApplyCopiesRepeatSlice(t *testing.T) {
	repeat := []Weekday{Monday, Friday}
	got := (&AlarmPatch{Repeat: &repeat}).Apply(Alarm{SoundTheme: ThemeNebula})
	repeat[0] = Sunday
	if got.Repeat[0] != Monday {
		t.Fatal("Apply must copy the repeat slice")
	}
}

func TestIsOneShot(t *testing.T) {
	if !(&Alarm{}).IsOneShot() {
		t.Fatal("no repeat days means one-shot")
	}
	if (&Alarm{Repeat: []Weekday{Sunday}}).IsOneShot() {
		t.Fatal("repeat days mean weekly")
	}
}

func TestSassRatePresets(t *testing.T) {
	want := map[SassLevel]float64{
		SassMild:     1.0,
		SassMedium:   1.05,
		SassSpicy:    0.95,
		SassUnhinged: 0.9,
	}
	for level, rate := range want {
		if SassRatePresets[level] != rate {
			t.Fatalf("preset for %s = %v, want %v", level, SassRatePresets[level], rate)
		}
	}
}

func TestTTSOptionsClamp(t *testing.T) {
	o := TTSOptions{Language: "en-US", Pitch: 0.1, Rate: 3.0}
	o.Clamp()
	if o.Pitch != MinTTSPitch || o.Rate != MaxTTSRate {
		t.Fatalf("clamp produced %+v", o)
	}
}
