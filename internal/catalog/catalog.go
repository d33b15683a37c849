package catalog

import (
	"math/rand"
	"sync"
	"time"

	"github.com/tazhate/noxd/internal/domain"
)

// Wake-up phrase pools, one per sass level. Selection is uniformly random;
// consecutive picks may repeat.
var phrases = map[domain.SassLevel][]string{
	domain.SassMild: {
		"Good morning. The stars kept watch; now it's your turn.",
		"Rise gently — the sun is already on its way up.",
		"A new orbit begins. Time to wake up.",
		"Morning has reached your side of the planet.",
		"The night sky is clocking out. So should you.",
		"Wakey wakey. The cosmos made you a fresh day.",
	},
	domain.SassMedium: {
		"The sun rose without your permission. Catch up.",
		"Orbit complete. Your bed's gravitational pull is not an excuse.",
		"Even Mercury finished a lap already. Up you get.",
		"Daylight is burning roughly 4 million tons of hydrogen per second for you. Move.",
		"The moon went home. Party's over. Get up.",
		"Snoozing is just time travel for the unprepared.",
	},
	domain.SassSpicy: {
		"The universe is 13.8 billion years old and you still can't wake up on time.",
		"That's one small beep for an alarm, one giant struggle for you.",
		"Your bed is not an escape pod. Launch yourself out of it.",
		"Stars literally exploded so you could have this morning. Show some respect.",
		"Gravity is weak enough to stand up against. Prove it.",
		"The early bird is already three asteroids ahead of you.",
	},
	domain.SassUnhinged: {
		"WAKE UP. The void called. It says you're late.",
		"Entropy is winning and you're horizontal. UNACCEPTABLE.",
		"A rogue planet has more direction in life than you do right now. UP.",
		"The heat death of the universe is coming and you're hitting snooze?!",
		"Rise, mortal! The photons have traveled 150 million kilometers for THIS?",
		"Your ancestors crawled out of the primordial ooze for you to GET OUT OF BED.",
	},
}

// Catalog picks wake-up messages. Safe for concurrent use.
type Catalog struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func New() *Catalog {
	return &Catalog{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewWithSource is used by tests that need deterministic picks.
func NewWithSource(src rand.Source) *Catalog {
	return &Catalog{rng: rand.New(src)}
}

// Pick returns a random phrase for the given sass level. An unrecognized
// level falls back to the mild pool.
func (c *Catalog) Pick(level domain.SassLevel) string {
	pool, ok := phrases[level]
	if !ok {
		pool = phrases[domain.SassMild]
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return pool[c.rng.Intn(len(pool))]
}

// Pool returns a copy of the phrase pool for a level. Unknown levels get
// the mild pool.
func Pool(level domain.SassLevel) []string {
	pool, ok := phrases[level]
	if !ok {
		pool = phrases[domain.SassMild]
	}
	out := make([]string, len(pool))
	copy(out, pool)
	return out
}
