package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fairway/pkg/metrics"
)

const memoryBackend = "memory"

type slot struct {
	value   float64
	expires time.Time
}

// Memory is an in-process cache grouped by season and player so
// invalidation never scans unrelated entries.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	seasons map[uuid.UUID]map[uuid.UUID]map[Key]slot
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithTTL expires entries after d. Zero keeps them until invalidated.
func WithTTL(d time.Duration) MemoryOption {
	return func(m *Memory) {
		if d >= 0 {
			m.ttl = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty in-process cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		now:     time.Now,
		seasons: make(map[uuid.UUID]map[uuid.UUID]map[Key]slot),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Get(ctx context.Context, k Key) (float64, bool) {
	m.mu.RLock()
	s, ok := m.seasons[k.SeasonID][k.PlayerID][k]
	m.mu.RUnlock()

	if !ok || (!s.expires.IsZero() && m.now().After(s.expires)) {
		metrics.RecordCacheMiss(memoryBackend)
		return 0, false
	}
	metrics.RecordCacheHit(memoryBackend)
	return s.value, true
}

func (m *Memory) Set(ctx context.Context, k Key, v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	players := m.seasons[k.SeasonID]
	if players == nil {
		players = make(map[uuid.UUID]map[Key]slot)
		m.seasons[k.SeasonID] = players
	}
	entries := players[k.PlayerID]
	if entries == nil {
		entries = make(map[Key]slot)
		players[k.PlayerID] = entries
	}
	s := slot{value: v}
	if m.ttl > 0 {
		s.expires = m.now().Add(m.ttl)
	}
	entries[k] = s
}

func (m *Memory) InvalidatePlayer(ctx context.Context, seasonID, playerID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seasons[seasonID], playerID)
	return nil
}

func (m *Memory) InvalidateSeason(ctx context.Context, seasonID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seasons, seasonID)
	return nil
}

// Len counts cached entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, players := range m.seasons {
		for _, entries := range players {
			n += len(entries)
		}
	}
	return n
}
