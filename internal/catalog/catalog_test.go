package catalog

import (
	"math/rand"
	"testing"

	"github.com/tazhate/noxd/internal/domain"
)

func TestPickReturnsPhraseFromPool(t *testing.T) {
	c := NewWithSource(rand.NewSource(1))
	for _, level := range domain.SassLevels {
		got := c.Pick(level)
		found := false
		for _, p := range Pool(level) {
			if p == got {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("pick for %s not in its pool: %q", level, got)
		}
	}
}

func TestPickUnknownLevelFallsBackToMild(t *testing.T) {
	c := NewWithSource(rand.NewSource(1))
	got := c.Pick(domain.SassLevel("nuclear"))
	found := false
	for _, p := range Pool(domain.SassMild) {
		if p == got {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("unknown level must draw from the mild pool, got %q", got)
	}
}

func TestEveryLevelHasPhrases(t *testing.T) {
	for _, level := range domain.SassLevels {
		if len(Pool(level)) == 0 {
			t.Fatalf("level %s has no phrases", level)
		}
	}
}

func TestPoolReturnsCopy(t *testing.T) {
	pool := Pool(domain.SassMild)
	pool[0] = "mutated"
	if Pool(domain.SassMild)[0] == "mutated" {
		t.Fatal("Pool must not expose the backing slice")
	}
}
