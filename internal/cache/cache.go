package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Manager wraps an in-memory TTL cache used for article query results
// and generated AI summaries.
type Manager struct {
	cache *cache.Cache
	mu    sync.RWMutex
}

func NewManager(defaultTTL time.Duration) *Manager {
	return &Manager{
		cache: cache.New(defaultTTL, 10*time.Minute),
	}
}

func (m *Manager) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache.Get(key)
}

func (m *Manager) Set(key string, value interface{}, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Set(key, value, ttl)
}

func (m *Manager) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Delete(key)
}

func (m *Manager) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Flush()
}

// SummaryKey builds the cache key for a generated article summary.
func SummaryKey(articleID int64) string {
	return fmt.Sprintf("summary:%d", articleID)
}

// GetSummary returns a previously generated summary for the article, if cached.
func (m *Manager) GetSummary(articleID int64) (string, bool) {
	v, found := m.Get(SummaryKey(articleID))
	if !found {
		return "", false
	}
	summary, ok := v.(string)
	return summary, ok
}

// SetSummary caches a generated summary. Summaries never go stale for a
// given article revision, so they get a long TTL.
func (m *Manager) SetSummary(articleID int64, summary string) {
	m.Set(SummaryKey(articleID), summary, 24*time.Hour)
}
