package speech

import (
	"context"
	"log"
	"sync"

	"github.com/tazhate/noxd/internal/domain"
)

// Strategy is one synthesis backend in the fallback chain.
type Strategy interface {
	Name() string
	Speak(ctx context.Context, text string, opts domain.TTSOptions) error
}

// Gateway unifies the speech backends behind one call. Speak tries each
// strategy in order and swallows intermediate failures; a speaking failure
// is never surfaced to the caller. At most one utterance is active at a
// time: starting a new one cancels the previous one first.
type Gateway struct {
	cloud  *CloudClient
	local  *LocalVoices
	engine *Engine

	mu      sync.Mutex
	current context.CancelFunc
	gen     uint64
}

func NewGateway(cloud *CloudClient, local *LocalVoices, engine *Engine) *Gateway {
	return &Gateway{cloud: cloud, local: local, engine: engine}
}

// Speak synthesizes and plays message, blocking until playback ends, is
// stopped, or every backend failed. Errors are logged, never returned.
func (g *Gateway) Speak(ctx context.Context, message string, opts domain.TTSOptions, apiKey string) {
	if message == "" {
		return
	}

	g.mu.Lock()
	if g.current != nil {
		// Last writer wins: abandon the previous utterance.
		g.current()
	}
	ctx, cancel := context.WithCancel(ctx)
	g.gen++
	gen := g.gen
	g.current = cancel
	g.mu.Unlock()

	defer func() {
		cancel()
		g.mu.Lock()
		// Only clear our own registration. An abandoned utterance that
		// finishes late must not tear down its replacement.
		if g.gen == gen {
			g.current = nil
		}
		g.mu.Unlock()
	}()

	for _, s := range g.chain(apiKey) {
		if ctx.Err() != nil {
			return
		}
		err := s.Speak(ctx, message, opts)
		if err == nil {
			return
		}
		log.Printf("Speech backend %s failed, falling back: %v", s.Name(), err)
	}

	// All backends failed; the alarm still rang, just silently.
	log.Printf("All speech backends failed for message %q", message)
}

func (g *Gateway) chain(apiKey string) []Strategy {
	var chain []Strategy
	if apiKey != "" && g.cloud != nil {
		chain = append(chain, g.cloud.Bound(apiKey))
	}
	if g.local != nil {
		chain = append(chain, g.local)
	}
	if g.engine != nil {
		chain = append(chain, g.engine)
	}
	return chain
}

// Stop cancels any in-flight utterance, including a cloud synthesis request
// still on the wire. Idempotent; a no-op when nothing is speaking.
func (g *Gateway) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current != nil {
		g.current()
		g.current = nil
	}
}

// ValidateAPIKey performs a minimal synthesis call with the given key.
// Returns true only when the endpoint accepts it; never panics on network
// or decode failures.
func (g *Gateway) ValidateAPIKey(ctx context.Context, key string) bool {
	if g.cloud == nil || key == "" {
		return false
	}
	return g.cloud.ValidateKey(ctx, key)
}
