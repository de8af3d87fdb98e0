package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"recipe-ai-service/internal/infrastructure/config"
	"recipe-ai-service/internal/pkg/common"
)

// Cache stores backend completions keyed by prompt so identical requests
// inside the TTL window skip the backend entirely.
type Cache interface {
	Get(ctx context.Context, prompt string) (string, error)
	Set(ctx context.Context, prompt, value string) error
	Stats() map[string]interface{}
	Close() error
}

// New selects the cache backend: redis when an address is configured,
// the in-process store otherwise. A disabled cache returns nil, which
// callers treat as "always miss".
func New(cfg *config.Config) (Cache, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("cache disabled")
		return nil, nil
	}
	if cfg.Cache.RedisAddr != "" {
		return newRedisCache(cfg)
	}
	return newMemoryCache(cfg), nil
}

// Key hashes a prompt into a stable cache key.
func Key(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("ai:completion:%s", hex.EncodeToString(sum[:]))
}

// memoryCache is the in-process store with TTL expiry and LRU eviction.
type memoryCache struct {
	config *config.Config
	mu     sync.RWMutex
	store  map[string]memoryEntry
	stats  cacheStats
	done   chan struct{}
}

type memoryEntry struct {
	value       string
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

type cacheStats struct {
	hits      int64
	misses    int64
	evictions int64
	errors    int64
}

func newMemoryCache(cfg *config.Config) *memoryCache {
	m := &memoryCache{
		config: cfg,
		store:  make(map[string]memoryEntry),
		done:   make(chan struct{}),
	}
	go m.runCleanup()

	common.LogInfo("cache manager initialized",
		zap.Int("max_size", cfg.Cache.MaxSize),
		zap.Duration("ttl", cfg.Cache.TTL),
		zap.Duration("cleanup_interval", cfg.Cache.CleanupInterval),
	)
	return m
}

func (m *memoryCache) Get(_ context.Context, prompt string) (string, error) {
	key := Key(prompt)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.store[key]
	if !exists {
		m.stats.misses++
		return "", common.ErrCacheMiss
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.store, key)
		m.stats.evictions++
		m.stats.misses++
		return "", common.ErrCacheMiss
	}

	entry.lastAccess = time.Now()
	entry.accessCount++
	m.store[key] = entry
	m.stats.hits++
	return entry.value, nil
}

func (m *memoryCache) Set(_ context.Context, prompt, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.store) >= m.config.Cache.MaxSize {
		evicted := m.cleanupLocked()
		if evicted > 0 {
			common.LogDebug("cache cleanup ran", zap.Int("evicted", evicted))
		}
		if len(m.store) >= m.config.Cache.MaxSize {
			m.evictLRULocked()
		}
		if len(m.store) >= m.config.Cache.MaxSize {
			m.stats.errors++
			common.LogWarn("cache full", zap.Int("size", len(m.store)))
			return common.ErrCacheFull
		}
	}

	now := time.Now()
	m.store[Key(prompt)] = memoryEntry{
		value:      value,
		expiresAt:  now.Add(m.config.Cache.TTL),
		lastAccess: now,
	}
	return nil
}

func (m *memoryCache) runCleanup() {
	ticker := time.NewTicker(m.config.Cache.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			m.cleanupLocked()
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

func (m *memoryCache) cleanupLocked() int {
	now := time.Now()
	count := 0
	for key, entry := range m.store {
		if now.After(entry.expiresAt) {
			delete(m.store, key)
			count++
			m.stats.evictions++
		}
	}
	return count
}

// evictLRULocked removes the least-used entry, breaking ties by age.
func (m *memoryCache) evictLRULocked() {
	var victim string
	var victimAccess time.Time
	var victimCount int
	for key, entry := range m.store {
		if victim == "" ||
			entry.accessCount < victimCount ||
			(entry.accessCount == victimCount && entry.lastAccess.Before(victimAccess)) {
			victim = key
			victimAccess = entry.lastAccess
			victimCount = entry.accessCount
		}
	}
	if victim != "" {
		delete(m.store, victim)
		m.stats.evictions++
	}
}

func (m *memoryCache) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lookups := m.stats.hits + m.stats.misses
	hitRatio := 0.0
	if lookups > 0 {
		hitRatio = float64(m.stats.hits) / float64(lookups)
	}
	return map[string]interface{}{
		"backend":   "memory",
		"size":      len(m.store),
		"max_size":  m.config.Cache.MaxSize,
		"hits":      m.stats.hits,
		"misses":    m.stats.misses,
		"evictions": m.stats.evictions,
		"errors":    m.stats.errors,
		"hit_ratio": hitRatio,
	}
}

func (m *memoryCache) Close() error {
	close(m.done)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = make(map[string]memoryEntry)
	common.LogInfo("cache manager closed",
		zap.Int64("hits", m.stats.hits),
		zap.Int64("misses", m.stats.misses),
		zap.Int64("evictions", m.stats.evictions),
	)
	return nil
}
