package repository

import (
	"context"
	"sync/atomic"
	"time"

	"rentease/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverKV serves from primary until it fails, then from fallback.
// The primary is retried once recoveryInterval has passed since the last failure.
type FailoverKV struct {
	primary   domain.KeyValueStore
	fallback  domain.KeyValueStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverKV(primary, fallback domain.KeyValueStore, logger *zerolog.Logger) *FailoverKV {
	return &FailoverKV{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// Degraded reports whether requests currently go to the fallback.
func (r *FailoverKV) Degraded() bool {
	return r.isDown.Load()
}

func (r *FailoverKV) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary key-value store failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(r.now().UnixNano())
}

// usePrimary reports whether the next call should try the primary.
func (r *FailoverKV) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return r.now().Sub(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverKV) recovered() {
	if r.isDown.CompareAndSwap(true, false) {
		r.logger.Info().Msg("Primary key-value store recovered")
	}
}

func (r *FailoverKV) Get(ctx context.Context, key string) (string, bool, error) {
	if r.usePrimary() {
		val, ok, err := r.primary.Get(ctx, key)
		if err == nil {
			r.recovered()
			return val, ok, nil
		}
		r.markDown(err)
	}
	return r.fallback.Get(ctx, key)
}

func (r *FailoverKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.Set(ctx, key, value, ttl)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Set(ctx, key, value, ttl)
}

func (r *FailoverKV) Delete(ctx context.Context, key string) error {
	if r.usePrimary() {
		err := r.primary.Delete(ctx, key)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.Delete(ctx, key)
}

func (r *FailoverKV) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			r.recovered()
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}

// Ping succeeds while either side is reachable.
func (r *FailoverKV) Ping(ctx context.Context) error {
	if err := r.primary.Ping(ctx); err == nil {
		return nil
	}
	return r.fallback.Ping(ctx)
}
