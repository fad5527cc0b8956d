package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"reserva/pkg/cache"
	"reserva/pkg/logger"
	"reserva/pkg/model"
)

const keyPrefix = "lock:booking:"

const (
	GranularityProvider = "provider"
	GranularityInterval = "interval"
)

// Manager hands out short-lived advisory locks over the shared cache. A
// lock fences the window between an overlap check and the insert that
// follows it; expiry bounds how long a crashed holder can block a slot.
type Manager struct {
	store       cache.Store
	log         *logger.Logger
	ttl         time.Duration
	granularity string
}

func NewManager(store cache.Store, log *logger.Logger, ttl time.Duration, granularity string) *Manager {
	return &Manager{
		store:       store,
		log:         log,
		ttl:         ttl,
		granularity: granularity,
	}
}

// ResourceKey derives the lock key for a provider's slot. Provider
// granularity serializes every admission for the provider; interval
// granularity only collides on the exact same window, so two bookings that
// overlap without sharing endpoints race to the conflict check instead.
func (m *Manager) ResourceKey(providerID string, start, end time.Time) string {
	if m.granularity == GranularityInterval {
		return fmt.Sprintf("%s%s:%s:%s",
			keyPrefix,
			providerID,
			start.UTC().Format(time.RFC3339),
			end.UTC().Format(time.RFC3339),
		)
	}
	return keyPrefix + providerID
}

// Acquire attempts to take the lock, returning nil when another holder has
// it. The entry carries a fresh owner token and expires on its own after
// the configured TTL.
func (m *Manager) Acquire(ctx context.Context, key string) (*model.SlotLock, error) {
	owner := uuid.New().String()
	ok, err := m.store.SetNX(ctx, key, owner, m.ttl)
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, nil
	}

	now := time.Now().UTC()
	return &model.SlotLock{
		Key:        key,
		Owner:      owner,
		AcquiredAt: now,
		ExpiresAt:  now.Add(m.ttl),
	}, nil
}

// Release frees the lock early. Failures are logged and swallowed: the TTL
// is the real guarantee, a missed delete only delays the next admission.
func (m *Manager) Release(ctx context.Context, key string) {
	if err := m.store.Del(ctx, key); err != nil {
		m.log.Warn("Failed to release slot lock, waiting for TTL expiry",
			"key", key,
			"error", err,
		)
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}
