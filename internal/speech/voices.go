package speech

import (
	"context"
	"fmt"
	"strings"

	"github.com/tazhate/noxd/internal/domain"
)

// Voice describes one installed synthesis voice.
type Voice struct {
	Name     string
	Language string
	// Local is false for voices that stream from a network service.
	Local bool
}

// Name substrings that mark a higher-quality voice.
var qualityMarkers = []string{"neural", "premium", "enhanced", "natural", "wavenet"}

// LocalVoices picks the best installed voice for a language and speaks
// through the native engine with it.
type LocalVoices struct {
	engine *Engine

	// inventory is swappable in tests; the default asks the engine.
	inventory func() []Voice
}

func NewLocalVoices(engine *Engine) *LocalVoices {
	lv := &LocalVoices{engine: engine}
	lv.inventory = engine.Voices
	return lv
}

func (lv *LocalVoices) Name() string { return "local" }

func (lv *LocalVoices) Speak(ctx context.Context, text string, opts domain.TTSOptions) error {
	voice, ok := BestVoice(lv.inventory(), opts.Language)
	if !ok {
		return fmt.Errorf("no voice available for %s", opts.Language)
	}
	return lv.engine.SpeakWithVoice(ctx, text, voice.Name, opts)
}

// BestVoice selects a voice for the language tag: quality-flagged names
// first, then network voices, then any language match.
func BestVoice(voices []Voice, language string) (Voice, bool) {
	matching := make([]Voice, 0, len(voices))
	for _, v := range voices {
		if languageMatches(v.Language, language) {
			matching = append(matching, v)
		}
	}
	if len(matching) == 0 {
		return Voice{}, false
	}

	for _, v := range matching {
		lower := strings.ToLower(v.Name)
		for _, marker := range qualityMarkers {
			if strings.Contains(lower, marker) {
				return v, true
			}
		}
	}

	for _, v := range matching {
		if !v.Local {
			return v, true
		}
	}

	return matching[0], true
}

func languageMatches(voiceLang, want string) bool {
	norm := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "-"))
	}
	vl, w := norm(voiceLang), norm(want)
	if vl == w {
		return true
	}
	// Same primary subtag (en-GB voice can serve an en-US request).
	vp, _, _ := strings.Cut(vl, "-")
	wp, _, _ := strings.Cut(w, "-")
	return vp != "" && vp == wp
}
