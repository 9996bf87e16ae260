package llm

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// cacheEntry represents one cached completion.
type cacheEntry struct {
	expiry time.Time
	text   string
}

// answerCache provides thread-safe TTL caching keyed by prompt hash. LLM
// components of a repeated identical question may vary at the model; caching
// keeps them stable within the TTL window.
type answerCache struct {
	entries map[string]cacheEntry
	stopCh  chan struct{}
	ttl     time.Duration
	mu      sync.RWMutex
}

func newAnswerCache(ttl time.Duration) *answerCache {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}

	cache := &answerCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup()

	return cache
}

func cacheKey(prompt string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(prompt)))
}

func (c *answerCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || time.Now().After(entry.expiry) {
		return "", false
	}
	return entry.text, true
}

func (c *answerCache) set(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		text:   text,
		expiry: time.Now().Add(c.ttl),
	}
}

func (c *answerCache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.After(entry.expiry) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

func (c *answerCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *answerCache) Close() {
	close(c.stopCh)
}
