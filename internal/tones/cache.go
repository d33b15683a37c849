package tones

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tazhate/noxd/internal/domain"
)

// Cache generates each theme's tone at most once per process and keeps the
// written file path. Reads after the first are lock-cheap map hits.
type Cache struct {
	mu   sync.Mutex
	dir  string
	uris map[domain.Theme]string

	generated int // per-process synthesis count, observable in tests
}

// NewCache stores tone files under dir (created on first use). An empty dir
// defaults to the user cache directory.
func NewCache(dir string) *Cache {
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = os.TempDir()
		}
		dir = filepath.Join(base, "nox-tones")
	}
	return &Cache{dir: dir, uris: make(map[domain.Theme]string)}
}

// ToneURI returns the path of the generated WAV for a theme, synthesizing
// and writing it only on the first call per process.
func (c *Cache) ToneURI(theme domain.Theme) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if uri, ok := c.uris[theme]; ok {
		return uri, nil
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("create tone dir: %w", err)
	}

	data := Generate(theme)
	c.generated++

	path := filepath.Join(c.dir, string(theme)+".wav")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write tone %s: %w", theme, err)
	}

	c.uris[theme] = path
	return path, nil
}

// Generated returns how many waveforms this cache has synthesized.
func (c *Cache) Generated() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generated
}
