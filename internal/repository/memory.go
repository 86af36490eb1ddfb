package repository

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryKV keeps values in process memory. Expired keys are dropped on read.
type MemoryKV struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	rateLimits map[string]*rateLimitEntry
	now        func() time.Time
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		entries:    make(map[string]memoryEntry),
		rateLimits: make(map[string]*rateLimitEntry),
		now:        time.Now,
	}
}

func (r *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return "", false, nil
	}
	if e.expired(r.now()) {
		delete(r.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (r *MemoryKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := memoryEntry{value: value}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ttl > 0 {
		e.expiresAt = r.now().Add(ttl)
	}
	r.entries[key] = e
	return nil
}

func (r *MemoryKV) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.entries, key)
	r.mu.Unlock()
	return nil
}

func (r *MemoryKV) CheckRateLimit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	entry, ok := r.rateLimits[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		r.rateLimits[key] = entry
	}
	entry.count++
	return entry.count <= limit, nil
}

func (r *MemoryKV) Ping(context.Context) error { return nil }
