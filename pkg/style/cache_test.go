package style

import (
	"fmt"
	"testing"

	"github.com/coolbeans/quickbib/pkg/types"
)

func countingLoader(loads *int) func(string) (string, error) {
	return func(path string) (string, error) {
		*loads++
		if path != "apa.csl" {
			return "", fmt.Errorf("no such style: %s", path)
		}
		return testStyle, nil
	}
}

func TestCacheComputesOnce(t *testing.T) {
	loads := 0
	cache := NewCache(countingLoader(&loads))
	opts := types.DefaultOptions()

	first, err := cache.Get("apa.csl", opts)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := cache.Get("apa.csl", opts)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loads != 1 {
		t.Errorf("Expected 1 load for repeated identical gets, got %d", loads)
	}
	if first != second {
		t.Error("Cached text should be identical across gets")
	}
}

func TestCacheKeysOnPatchRelevantOptions(t *testing.T) {
	loads := 0
	cache := NewCache(countingLoader(&loads))

	base := types.DefaultOptions()
	isbn := base
	isbn.IncludeISBN = true
	quotes := base
	quotes.DumbQuotes = false

	if _, err := cache.Get("apa.csl", base); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := cache.Get("apa.csl", isbn); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := cache.Get("apa.csl", quotes); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if loads != 2 {
		t.Errorf("Expected 2 loads (dumb_quotes does not affect patching), got %d", loads)
	}
	if cache.Len() != 2 {
		t.Errorf("Expected 2 cache entries, got %d", cache.Len())
	}
}

func TestCacheInvalidate(t *testing.T) {
	loads := 0
	cache := NewCache(countingLoader(&loads))
	opts := types.DefaultOptions()

	if _, err := cache.Get("apa.csl", opts); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	cache.Invalidate("apa.csl")
	if cache.Len() != 0 {
		t.Errorf("Invalidate should drop the entry, have %d", cache.Len())
	}
	if _, err := cache.Get("apa.csl", opts); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if loads != 2 {
		t.Errorf("Expected a reload after invalidation, got %d loads", loads)
	}
}

func TestCachePropagatesLoadAndPatchErrors(t *testing.T) {
	loads := 0
	cache := NewCache(countingLoader(&loads))

	if _, err := cache.Get("missing.csl", types.DefaultOptions()); err == nil {
		t.Error("Expected an error for an unloadable style")
	}

	brokenCache := NewCache(func(string) (string, error) {
		return "<style></style>", nil
	})
	if _, err := brokenCache.Get("apa.csl", types.DefaultOptions()); err == nil {
		t.Error("Expected a patch error for a style without anchors")
	}
	if brokenCache.Len() != 0 {
		t.Error("Failed patches must not be cached")
	}
}
