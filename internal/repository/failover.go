package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"barberia/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverStore uses primary until it fails, then serves from fallback and
// probes primary again once per recoveryInterval.
type FailoverStore struct {
	primary   domain.KeyValueStore
	fallback  domain.KeyValueStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverStore(primary, fallback domain.KeyValueStore, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// usePrimary reports whether the next call should go to primary.
func (r *FailoverStore) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Since(r.lastCheck) > recoveryInterval
}

func (r *FailoverStore) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary store failed, falling back to memory")
	}
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

func (r *FailoverStore) markUp() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary store recovered")
	}
}

func (r *FailoverStore) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if r.usePrimary() {
		found, err := r.primary.GetJSON(ctx, key, dest)
		if err == nil {
			r.markUp()
			return found, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetJSON(ctx, key, dest)
}

func (r *FailoverStore) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.SetJSON(ctx, key, value, ttl)
		if err == nil {
			r.markUp()
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetJSON(ctx, key, value, ttl)
}

// Delete always clears fallback too, so entries written during an outage do
// not outlive an invalidation.
func (r *FailoverStore) Delete(ctx context.Context, keys ...string) error {
	if r.usePrimary() {
		if err := r.primary.Delete(ctx, keys...); err != nil {
			r.markDown(err)
		} else {
			r.markUp()
		}
	}
	return r.fallback.Delete(ctx, keys...)
}

func (r *FailoverStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			r.markUp()
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
