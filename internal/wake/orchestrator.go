package wake

import (
	"context"
	"log"
	"sync"

	"github.com/tazhate/noxd/internal/audio"
	"github.com/tazhate/noxd/internal/domain"
	"github.com/tazhate/noxd/internal/tones"
)

// TTSSource exposes the speech and wake settings read live at fire time.
type TTSSource interface {
	TTSEnabled() bool
	TTSOptions() domain.TTSOptions
	CloudAPIKey() string
	Wake() domain.WakeSettings
}

// Speaker is the slice of the speech gateway the orchestrator uses.
type Speaker interface {
	Speak(ctx context.Context, message string, opts domain.TTSOptions, apiKey string)
	Stop()
}

// TonePlayer starts looping alarm-tone playback for a theme and returns a
// stop function.
type TonePlayer interface {
	Play(theme domain.Theme) (stop func(), err error)
}

// Presenter surfaces the ringing alarm to whatever front end is attached.
type Presenter interface {
	Present(payload domain.WakePayload)
	Dismiss(alarmID string)
}

// Orchestrator handles trigger deliveries: present the alarm, start the
// tone, and speak the wake message. The message text and sass level come
// frozen in the payload; voice, rate, and cloud key are read live so the
// user's latest speech settings always apply.
type Orchestrator struct {
	settings  TTSSource
	speaker   Speaker
	player    TonePlayer
	presenter Presenter

	mu       sync.Mutex
	stopTone func()
}

func NewOrchestrator(settings TTSSource, speaker Speaker, player TonePlayer, presenter Presenter) *Orchestrator {
	return &Orchestrator{
		settings:  settings,
		speaker:   speaker,
		player:    player,
		presenter: presenter,
	}
}

// HandleFire runs the full wake sequence for a delivered trigger.
func (o *Orchestrator) HandleFire(ctx context.Context, payload domain.WakePayload) {
	log.Printf("Alarm %s fired (theme=%s)", payload.AlarmID, payload.Theme)

	if o.presenter != nil {
		o.presenter.Present(payload)
	}

	if o.player != nil {
		stop, err := o.player.Play(payload.Theme)
		if err != nil {
			log.Printf("Tone playback for alarm %s failed: %v", payload.AlarmID, err)
		} else {
			o.mu.Lock()
			if o.stopTone != nil {
				o.stopTone()
			}
			o.stopTone = stop
			o.mu.Unlock()
		}
	}

	if payload.Message == "" || !o.settings.TTSEnabled() {
		return
	}

	opts := o.settings.TTSOptions()
	// The text was frozen at schedule time, but the delivery style follows
	// whatever sass level the user has set now. The composed rate
	// deliberately skips the usual clamp so unhinged can push past the cap
	// the settings screen enforces.
	opts.Rate *= domain.SassRatePresets[o.settings.Wake().Sass]
	o.speaker.Speak(ctx, payload.Message, opts, o.settings.CloudAPIKey())
}

// Dismiss stops the tone and any in-flight speech for a ringing alarm.
func (o *Orchestrator) Dismiss(alarmID string) {
	o.mu.Lock()
	if o.stopTone != nil {
		o.stopTone()
		o.stopTone = nil
	}
	o.mu.Unlock()

	o.speaker.Stop()
	if o.presenter != nil {
		o.presenter.Dismiss(alarmID)
	}
}

// LogPresenter is the headless presenter: it records wake events to the
// process log.
type LogPresenter struct{}

func (LogPresenter) Present(p domain.WakePayload) {
	label := p.Label
	if label == "" {
		label = "Alarm"
	}
	log.Printf("RINGING: %s %q", label, p.Message)
}

func (LogPresenter) Dismiss(alarmID string) {
	log.Printf("Dismissed alarm %s", alarmID)
}

// TonePlayback adapts the tone generator and audio player into a TonePlayer.
// The cache keeps the per-theme WAV files on disk for external consumers;
// in-process playback synthesizes directly.
type TonePlayback struct {
	Cache *tones.Cache
}

func (t *TonePlayback) Play(theme domain.Theme) (func(), error) {
	if t.Cache != nil {
		if _, err := t.Cache.ToneURI(theme); err != nil {
			log.Printf("Caching tone %s failed: %v", theme, err)
		}
	}
	playback := audio.PlayLoop(tones.Generate(theme))
	return playback.Stop, nil
}
