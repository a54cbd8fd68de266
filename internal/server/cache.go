package server

import (
	"sync"
	"time"

	"github.com/nao1215/privacyscan/internal/model"
)

// reportCache holds rendered score reports by scan ID.
// Entries expire after ttl; a zero ttl disables expiry.
type reportCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	report    *model.ScanReport
	expiresAt time.Time
}

func newReportCache(ttl time.Duration) *reportCache {
	return &reportCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *reportCache) get(scanID string) (*model.ScanReport, bool) {
	c.mu.RLock()
	entry, ok := c.entries[scanID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.expired(entry) {
		c.evictExpired(scanID)
		return nil, false
	}
	return entry.report, true
}

func (c *reportCache) expired(entry cacheEntry) bool {
	return c.ttl > 0 && !c.now().Before(entry.expiresAt)
}

// evictExpired deletes the entry only if it is still expired under the
// write lock, so a put that raced the read in get survives.
func (c *reportCache) evictExpired(scanID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.entries[scanID]; ok && c.expired(entry) {
		delete(c.entries, scanID)
	}
}

func (c *reportCache) put(scanID string, report *model.ScanReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[scanID] = cacheEntry{
		report:    report,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *reportCache) invalidate(scanID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, scanID)
}

func (c *reportCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
