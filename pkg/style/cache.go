package style

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/fsnotify.v1"

	"github.com/coolbeans/quickbib/pkg/types"
)

// cacheKey identifies one patched style: the source path plus the
// patch-relevant slice of the option set.
type cacheKey struct {
	path string
	opts string
}

// Cache memoizes patched style text per (path, option-tuple). Entries
// are computed lazily and live for the cache's lifetime unless
// explicitly invalidated or a watched style file changes. Patching is
// pure, so a lost race merely recomputes the same value; population is
// still guarded with a read-check-write pattern to avoid the waste.
type Cache struct {
	mu      sync.RWMutex
	load    func(path string) (string, error)
	entries map[cacheKey]string

	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

// NewCache creates a style cache. load reads style text by path; nil
// uses os.ReadFile.
func NewCache(load func(path string) (string, error)) *Cache {
	if load == nil {
		load = func(path string) (string, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
	}
	return &Cache{
		load:    load,
		entries: make(map[cacheKey]string),
	}
}

// Get returns the patched style text for path under opts, loading and
// patching on first use.
func (c *Cache) Get(path string, opts types.Options) (string, error) {
	key := cacheKey{path: path, opts: opts.PatchKey()}

	c.mu.RLock()
	text, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return text, nil
	}

	source, err := c.load(path)
	if err != nil {
		return "", fmt.Errorf("loading style %s: %w", path, err)
	}
	patched, err := Patch(source, opts)
	if err != nil {
		return "", fmt.Errorf("patching style %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = patched
	return patched, nil
}

// Invalidate drops every cached entry derived from path.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.path == path {
			delete(c.entries, key)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Watch invalidates cached entries when any of the given style files
// is rewritten or removed.
func (c *Cache) Watch(paths ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	c.watcher = watcher
	c.stopChan = make(chan struct{})

	go c.watchLoop()

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			watcher.Close()
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}
	return nil
}

// watchLoop handles file system events.
func (c *Cache) watchLoop() {
	for {
		select {
		case <-c.stopChan:
			return

		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			switch {
			case event.Op&fsnotify.Write == fsnotify.Write,
				event.Op&fsnotify.Remove == fsnotify.Remove,
				event.Op&fsnotify.Rename == fsnotify.Rename:
				c.Invalidate(event.Name)
			}

		case _, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher if one was started.
func (c *Cache) Close() {
	if c.stopChan != nil {
		close(c.stopChan)
	}
	if c.watcher != nil {
		c.watcher.Close()
	}
}
