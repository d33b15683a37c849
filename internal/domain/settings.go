package domain

// SassLevel selects the wording pool and the speaking-rate preset for wake
// messages.
type SassLevel string

const (
	SassMild     SassLevel = "mild"
	SassMedium   SassLevel = "medium"
	SassSpicy    SassLevel = "spicy"
	SassUnhinged SassLevel = "unhinged"
)

var SassLevels = []SassLevel{SassMild, SassMedium, SassSpicy, SassUnhinged}

func (s SassLevel) Valid() bool {
	switch s {
	case SassMild, SassMedium, SassSpicy, SassUnhinged:
		return true
	}
	return false
}

// SassRatePresets multiply the user's base speaking rate at fire time.
// Spicier levels slow down for dramatic delivery.
var SassRatePresets = map[SassLevel]float64{
	SassMild:     1.0,
	SassMedium:   1.05,
	SassSpicy:    0.95,
	SassUnhinged: 0.9,
}

const (
	MinTTSPitch = 0.5
	MaxTTSPitch = 2.0
	MinTTSRate  = 0.5
	MaxTTSRate  = 2.0
)

// TTSOptions are the user's base speech settings. Pitch and rate are clamped
// on every set; the sass rate multiplier is applied on top at speak time and
// is never persisted as a combined value.
type TTSOptions struct {
	Language string  `json:"language"`
	Pitch    float64 `json:"pitch"`
	Rate     float64 `json:"rate"`
}

func DefaultTTSOptions() TTSOptions {
	return TTSOptions{Language: "en-US", Pitch: 1.0, Rate: 1.0}
}

// Clamp forces pitch and rate into their allowed ranges.
func (o *TTSOptions) Clamp() {
	o.Pitch = clamp(o.Pitch, MinTTSPitch, MaxTTSPitch)
	o.Rate = clamp(o.Rate, MinTTSRate, MaxTTSRate)
	if o.Language == "" {
		o.Language = "en-US"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TTSLanguage is an entry of the supported language picker.
type TTSLanguage struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

var TTSLanguages = []TTSLanguage{
	{Label: "English (US)", Value: "en-US"},
	{Label: "English (UK)", Value: "en-GB"},
	{Label: "English (AU)", Value: "en-AU"},
	{Label: "French (Canada)", Value: "fr-CA"},
	{Label: "French (France)", Value: "fr-FR"},
	{Label: "Spanish (US)", Value: "es-US"},
	{Label: "Spanish (Spain)", Value: "es-ES"},
	{Label: "German", Value: "de-DE"},
	{Label: "Japanese", Value: "ja-JP"},
	{Label: "Korean", Value: "ko-KR"},
}

// WakeSettings are the global wake-message settings snapshotted into a
// trigger's payload at schedule time.
type WakeSettings struct {
	MessagesEnabled bool      `json:"messagesEnabled"`
	Sass            SassLevel `json:"sassLevel"`
}
