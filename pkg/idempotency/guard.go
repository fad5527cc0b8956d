package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reserva/pkg/cache"
	apperrors "reserva/pkg/errors"
	"reserva/pkg/logger"
)

const keyPrefix = "idempotency:"

// Guard deduplicates retried write requests through the shared cache.
//
// Two modes of use: Lookup/Record bracket a booking create so a retry with
// the same key replays the stored response instead of re-admitting, and
// Once is a one-shot gate for flows that only need "has this run before".
type Guard struct {
	store  cache.Store
	log    *logger.Logger
	ttl    time.Duration
	strict bool
}

type Config struct {
	TTL time.Duration

	// Strict refuses writes while the cache is unreachable instead of
	// proceeding without replay protection.
	Strict bool
}

func NewGuard(store cache.Store, log *logger.Logger, cfg Config) *Guard {
	return &Guard{
		store:  store,
		log:    log,
		ttl:    cfg.TTL,
		strict: cfg.Strict,
	}
}

// Lookup returns the response recorded for key, if any. The returned body
// is byte-for-byte what Record stored.
func (g *Guard) Lookup(ctx context.Context, key string) (string, bool, error) {
	body, err := g.store.Get(ctx, keyPrefix+key)
	if err == nil {
		return body, true, nil
	}
	if errors.Is(err, cache.ErrMiss) {
		return "", false, nil
	}
	if g.strict {
		return "", false, apperrors.Unavailable("Idempotency Store")
	}
	g.log.Warn("Idempotency lookup failed, proceeding without replay protection",
		"key", key,
		"error", err,
	)
	return "", false, nil
}

// Record stores the serialized response for key. Failures are reported but
// never veto a write that already happened.
func (g *Guard) Record(ctx context.Context, key, body string) error {
	if err := g.store.Set(ctx, keyPrefix+key, body, g.ttl); err != nil {
		g.log.Warn("Failed to record idempotency key",
			"key", key,
			"error", err,
		)
		return fmt.Errorf("record idempotency key: %w", err)
	}
	return nil
}

// Once marks key as processed, returning false when a previous call already
// claimed it. The claim expires after guardTTL.
func (g *Guard) Once(ctx context.Context, key string, guardTTL time.Duration) (bool, error) {
	ok, err := g.store.SetNX(ctx, keyPrefix+key, "1", guardTTL)
	if err != nil {
		if g.strict {
			return false, apperrors.Unavailable("Idempotency Store")
		}
		g.log.Warn("Idempotency guard unavailable, allowing request through",
			"key", key,
			"error", err,
		)
		return true, nil
	}
	return ok, nil
}
