package audio

import (
	"bytes"
	"log"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Crescendo ramp applied to looping alarm tones.
const (
	startVolume     = 0.1
	maxVolume       = 1.0
	volumeStep      = 0.05
	volumeInterval  = 2 * time.Second
	playbackPollGap = 10 * time.Millisecond
)

// Global audio context singleton. oto allows one context per process, so
// everything is mixed at the tone generator's native format.
var (
	globalCtx     *oto.Context
	globalCtxOnce sync.Once
	ctxReady      bool
)

func initContext(sampleRate, channels int) {
	globalCtxOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}

		ctx, readyChan, err := oto.NewContext(op)
		if err != nil {
			log.Printf("Failed to initialize audio context: %v", err)
			return
		}

		// Wait for the hardware audio devices to be ready
		<-readyChan

		globalCtx = ctx
		ctxReady = true
		log.Println("Audio context initialized successfully")
	})
}

// Playback controls a looping tone started by PlayLoop.
type Playback struct {
	stopChan chan struct{}
	player   *oto.Player
	stopped  bool
	mu       sync.Mutex
}

// PlayLoop plays WAV data in a loop with a crescendo volume ramp until
// stopped. Returns nil when no audio device is available.
func PlayLoop(wavData []byte) *Playback {
	format, pcm, err := parseWAV(wavData)
	if err != nil {
		log.Printf("Failed to parse WAV file: %v", err)
		return nil
	}

	initContext(format.SampleRate, format.Channels)

	if !ctxReady || globalCtx == nil {
		log.Printf("Audio context not ready")
		return nil
	}

	p := &Playback{stopChan: make(chan struct{})}
	go p.loop(pcm)
	return p
}

func (p *Playback) loop(pcm []byte) {
	volume := startVolume
	lastStep := time.Now()

	for {
		p.mu.Lock()
		p.player = globalCtx.NewPlayer(bytes.NewReader(pcm))
		p.player.SetVolume(volume)
		p.player.Play()
		player := p.player
		p.mu.Unlock()

		for player.IsPlaying() {
			select {
			case <-p.stopChan:
				player.Pause()
				player.Close()
				return
			case <-time.After(playbackPollGap):
				if time.Since(lastStep) >= volumeInterval && volume < maxVolume {
					volume = min(volume+volumeStep, maxVolume)
					player.SetVolume(volume)
					lastStep = time.Now()
				}
			}
		}

		if err := player.Close(); err != nil {
			log.Printf("Failed to close audio player: %v", err)
		}

		select {
		case <-p.stopChan:
			return
		default:
			// loop again
		}
	}
}

// Stop halts playback. Safe to call more than once and on a nil Playback.
func (p *Playback) Stop() {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stopped {
		p.stopped = true
		close(p.stopChan)
		if p.player != nil {
			p.player.Pause()
		}
	}
}
