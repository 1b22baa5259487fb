package cmd

import (
	"path/filepath"
	"testing"

	"github.com/jpequegn/polybench/internal/cache"
)

func TestCacheStatsAndClearRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := cache.New(dir, 10)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}

	key := cache.ComputeKey("go", "go1", "doWork()", nil)
	if _, err := c.CompileOrGet(key, func() ([]byte, error) { return []byte("ok"), nil }); err != nil {
		t.Fatalf("failed to populate cache: %v", err)
	}

	if c.Size() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Size())
	}
	if c.Stats().Misses != 1 {
		t.Errorf("expected 1 miss recorded, got %d", c.Stats().Misses)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("failed to clear cache: %v", err)
	}
	if c.Size() != 0 {
		t.Errorf("expected 0 entries after clear, got %d", c.Size())
	}
}
