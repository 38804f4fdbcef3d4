// Package cache memoizes page analyses by URL and content fingerprint.
package cache

import (
	"sync"
	"time"

	"github.com/page-audit/auditor/internal/analysis"
)

// Entry is one cached analysis. Owned exclusively by the Manager.
type Entry struct {
	URL         string
	Fingerprint string
	Analysis    *analysis.PageAnalysis
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Entries   int   `json:"entries"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// Manager is an in-memory TTL cache for analyses. A hit requires an exact
// URL+fingerprint match and an unexpired entry; anything else is a miss and
// stale entries are dropped, never returned. Entries beyond the size bound
// are evicted least-recently-used first.
type Manager struct {
	mu sync.Mutex

	ttl        time.Duration
	maxEntries int

	entries     map[string]*Entry
	accessOrder []string

	hits      int64
	misses    int64
	evictions int64

	now func() time.Time // overridable for tests
}

// NewManager creates a cache with the given TTL and entry bound.
// maxEntries <= 0 disables the size bound.
func NewManager(ttl time.Duration, maxEntries int) *Manager {
	return &Manager{
		ttl:         ttl,
		maxEntries:  maxEntries,
		entries:     make(map[string]*Entry),
		accessOrder: make([]string, 0),
		now:         time.Now,
	}
}

func cacheKey(url, fingerprint string) string {
	return url + "\x00" + fingerprint
}

// Get returns the cached analysis for url+fingerprint, or nil on a miss.
func (m *Manager) Get(url, fingerprint string) *analysis.PageAnalysis {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cacheKey(url, fingerprint)
	entry, ok := m.entries[key]
	if !ok {
		m.misses++
		return nil
	}

	if m.now().After(entry.ExpiresAt) {
		m.deleteLocked(key)
		m.misses++
		return nil
	}

	m.touchLocked(key)
	m.hits++
	return entry.Analysis
}

// Put stores an analysis under url+fingerprint. A re-Put of the same key
// refreshes the entry and its TTL.
func (m *Manager) Put(url, fingerprint string, a *analysis.PageAnalysis) {
	if a == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := cacheKey(url, fingerprint)
	if _, ok := m.entries[key]; ok {
		m.removeFromOrderLocked(key)
	}

	now := m.now()
	m.entries[key] = &Entry{
		URL:         url,
		Fingerprint: fingerprint,
		Analysis:    a,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.ttl),
	}
	m.accessOrder = append(m.accessOrder, key)

	for m.maxEntries > 0 && len(m.entries) > m.maxEntries {
		m.evictOldestLocked()
	}
}

// Invalidate drops every entry for a URL regardless of fingerprint. Used
// when a significant document change makes prior analyses stale.
func (m *Manager) Invalidate(url string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, entry := range m.entries {
		if entry.URL == url {
			m.deleteLocked(key)
		}
	}
}

// Cleanup drops expired entries and returns how many were removed.
func (m *Manager) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	now := m.now()
	for key, entry := range m.entries {
		if now.After(entry.ExpiresAt) {
			m.deleteLocked(key)
			removed++
		}
	}
	return removed
}

// Clear removes all entries.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]*Entry)
	m.accessOrder = m.accessOrder[:0]
}

// Stats returns a snapshot of the cache counters.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Stats{
		Entries:   len(m.entries),
		Hits:      m.hits,
		Misses:    m.misses,
		Evictions: m.evictions,
	}
}

func (m *Manager) deleteLocked(key string) {
	delete(m.entries, key)
	m.removeFromOrderLocked(key)
}

func (m *Manager) evictOldestLocked() {
	if len(m.accessOrder) == 0 {
		return
	}
	oldest := m.accessOrder[0]
	m.deleteLocked(oldest)
	m.evictions++
}

func (m *Manager) touchLocked(key string) {
	m.removeFromOrderLocked(key)
	m.accessOrder = append(m.accessOrder, key)
}

func (m *Manager) removeFromOrderLocked(key string) {
	for i, k := range m.accessOrder {
		if k == key {
			m.accessOrder = append(m.accessOrder[:i], m.accessOrder[i+1:]...)
			return
		}
	}
}
