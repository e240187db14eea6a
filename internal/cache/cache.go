// Package cache stores raw market data pages between screening runs.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/screener/internal/core"
)

// Cache is a byte store with per-entry expiry
type Cache interface {
	// Get returns the value for key; found is false on a miss or an expired entry
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config selects and configures a cache backend
type Config struct {
	Type     string // "none", "memory" or "redis"
	Addr     string
	Password string
	DB       int
}

// New creates the cache described by cfg. It returns nil for type "none" or "".
func New(cfg Config) (Cache, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemory(), nil
	case "redis":
		if cfg.Addr == "" {
			return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("redis cache requires addr"))
		}
		return NewRedis(RedisOptions{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}), nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown cache type %q", cfg.Type))
	}
}

type entry struct {
	value []byte
	exp   time.Time
}

// Memory is an in-process cache
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemory creates an empty in-memory cache
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.exp.IsZero() && m.now().After(e.exp) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.exp = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Len returns the number of stored entries, expired ones included
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
