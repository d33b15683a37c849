package domain

import "fmt"

// Weekday codes follow the persisted alarm format: 1=Sunday .. 7=Saturday.
type Weekday int

const (
	Sunday    Weekday = 1
	Monday    Weekday = 2
	Tuesday   Weekday = 3
	Wednesday Weekday = 4
	Thursday  Weekday = 5
	Friday    Weekday = 6
	Saturday  Weekday = 7
)

func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

func (w Weekday) String() string {
	names := [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return names[w-1]
}

// Theme selects the procedurally generated alarm tone.
type Theme string

const (
	ThemePulsar Theme = "pulsar"
	ThemeNebula Theme = "nebula"
	ThemeQuasar Theme = "quasar"
	ThemeSaturn Theme = "saturn"
)

var Themes = []Theme{ThemePulsar, ThemeNebula, ThemeQuasar, ThemeSaturn}

var ThemeLabels = map[Theme]string{
	ThemePulsar: "Pulsar",
	ThemeNebula: "Nebula",
	ThemeQuasar: "Quasar",
	ThemeSaturn: "Saturn",
}

func (t Theme) Valid() bool {
	_, ok := ThemeLabels[t]
	return ok
}

// Alarm is the persisted alarm record. TriggerHandles is owned by the alarm
// store: while the alarm is enabled it holds one live scheduler handle per
// physical trigger (one for a one-shot, one per repeat weekday otherwise).
type Alarm struct {
	ID             string    `json:"id"`
	Label          string    `json:"label"`
	Hour           int       `json:"hour"`
	Minute         int       `json:"minute"`
	Repeat         []Weekday `json:"repeat"`
	Enabled        bool      `json:"enabled"`
	SoundTheme     Theme     `json:"soundTheme"`
	Vibrate        bool      `json:"vibrate"`
	TriggerHandles []string  `json:"triggerHandles"`
}

// IsOneShot reports whether the alarm fires once at its next occurrence
// instead of repeating weekly.
func (a *Alarm) IsOneShot() bool {
	return len(a.Repeat) == 0
}

// Validate checks the schedule fields of an alarm.
func (a *Alarm) Validate() error {
	if a.Hour < 0 || a.Hour > 23 {
		return fmt.Errorf("hour out of range: %d", a.Hour)
	}
	if a.Minute < 0 || a.Minute > 59 {
		return fmt.Errorf("minute out of range: %d", a.Minute)
	}
	for _, d := range a.Repeat {
		if !d.Valid() {
			return fmt.Errorf("invalid repeat weekday: %d", int(d))
		}
	}
	if !a.SoundTheme.Valid() {
		return fmt.Errorf("unknown sound theme: %q", a.SoundTheme)
	}
	return nil
}

// AlarmPatch is a partial update. Nil fields are left untouched.
type AlarmPatch struct {
	Label      *string    `json:"label,omitempty"`
	Hour       *int       `json:"hour,omitempty"`
	Minute     *int       `json:"minute,omitempty"`
	Repeat     *[]Weekday `json:"repeat,omitempty"`
	Enabled    *bool      `json:"enabled,omitempty"`
	SoundTheme *Theme     `json:"soundTheme,omitempty"`
	Vibrate    *bool      `json:"vibrate,omitempty"`
}

// TouchesSchedule reports whether applying the patch requires the alarm's
// triggers to be canceled and re-registered.
func (p *AlarmPatch) TouchesSchedule() bool {
	return p.Hour != nil || p.Minute != nil || p.Repeat != nil || p.Enabled != nil
}

// Apply merges the patch into a copy of the alarm.
func (p *AlarmPatch) Apply(a Alarm) Alarm {
	if p.Label != nil {
		a.Label = *p.Label
	}
	if p.Hour != nil {
		a.Hour = *p.Hour
	}
	if p.Minute != nil {
		a.Minute = *p.Minute
	}
	if p.Repeat != nil {
		a.Repeat = append([]Weekday(nil), (*p.Repeat)...)
	}
	if p.Enabled != nil {
		a.Enabled = *p.Enabled
	}
	if p.SoundTheme != nil {
		a.SoundTheme = *p.SoundTheme
	}
	if p.Vibrate != nil {
		a.Vibrate = *p.Vibrate
	}
	return a
}
