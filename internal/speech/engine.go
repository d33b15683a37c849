package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/tazhate/noxd/internal/domain"
)

// Normal speaking rate of the platform engines in words per minute; the
// user's rate multiplier is applied against this.
const baseWordsPerMinute = 175

// Engine speaks through the platform's on-device synthesis command: `say`
// on macOS, `espeak` elsewhere. It is the last link in the fallback chain
// and also backs the smart local-voice strategy.
type Engine struct {
	binary string
}

func NewEngine() *Engine {
	if runtime.GOOS == "darwin" {
		return &Engine{binary: "say"}
	}
	return &Engine{binary: "espeak"}
}

func (e *Engine) Name() string { return "device" }

// Available reports whether the platform command exists.
func (e *Engine) Available() bool {
	_, err := exec.LookPath(e.binary)
	return err == nil
}

// Speak uses the engine's default voice for the language.
func (e *Engine) Speak(ctx context.Context, text string, opts domain.TTSOptions) error {
	return e.SpeakWithVoice(ctx, text, "", opts)
}

// SpeakWithVoice runs the synthesis command, blocking until it exits.
// Canceling the context kills the process mid-utterance.
func (e *Engine) SpeakWithVoice(ctx context.Context, text, voice string, opts domain.TTSOptions) error {
	if !e.Available() {
		return fmt.Errorf("%s not found in PATH", e.binary)
	}

	var args []string
	if e.binary == "say" {
		if voice != "" {
			args = append(args, "-v", voice)
		}
		args = append(args, "-r", fmt.Sprintf("%.0f", baseWordsPerMinute*opts.Rate))
		args = append(args, text)
	} else {
		if voice != "" {
			args = append(args, "-v", voice)
		} else if opts.Language != "" {
			args = append(args, "-v", strings.ToLower(opts.Language))
		}
		args = append(args, "-s", fmt.Sprintf("%.0f", baseWordsPerMinute*opts.Rate))
		// espeak pitch runs 0-99 with 50 as neutral.
		args = append(args, "-p", fmt.Sprintf("%.0f", 50*opts.Pitch))
		args = append(args, text)
	}

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			// Stopped by the caller, not a synthesis failure.
			return nil
		}
		return fmt.Errorf("%s failed: %w, stderr: %s", e.binary, err, stderr.String())
	}
	return nil
}

// Voices lists the engine's installed voices. An empty list means voice
// discovery failed; the caller falls back to the engine default.
func (e *Engine) Voices() []Voice {
	if !e.Available() {
		return nil
	}

	var out []byte
	var err error
	if e.binary == "say" {
		out, err = exec.Command(e.binary, "-v", "?").Output()
	} else {
		out, err = exec.Command(e.binary, "--voices").Output()
	}
	if err != nil {
		return nil
	}

	if e.binary == "say" {
		return parseSayVoices(out)
	}
	return parseEspeakVoices(out)
}

// parseSayVoices reads `say -v ?` lines: "Name    lang_TAG    # sample".
func parseSayVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		before, _, _ := strings.Cut(line, "#")
		fields := strings.Fields(before)
		if len(fields) < 2 {
			continue
		}
		// The language tag is the last field; multi-word voice names
		// precede it.
		lang := fields[len(fields)-1]
		name := strings.Join(fields[:len(fields)-1], " ")
		voices = append(voices, Voice{Name: name, Language: lang, Local: true})
	}
	return voices
}

// parseEspeakVoices reads `espeak --voices` table rows, skipping the header.
func parseEspeakVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		voices = append(voices, Voice{Name: fields[3], Language: fields[1], Local: true})
	}
	return voices
}
