package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"reserva/pkg/cache"
	apperrors "reserva/pkg/errors"
	"reserva/pkg/logger"
)

type fakeStore struct {
	getFunc   func(ctx context.Context, key string) (string, error)
	setFunc   func(ctx context.Context, key, value string, ttl time.Duration) error
	setNXFunc func(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	delFunc   func(ctx context.Context, key string) error
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	return f.getFunc(ctx, key)
}

func (f *fakeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return f.setFunc(ctx, key, value, ttl)
}

func (f *fakeStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return f.setNXFunc(ctx, key, value, ttl)
}

func (f *fakeStore) Del(ctx context.Context, key string) error {
	return f.delFunc(ctx, key)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Service: "test"})
}

func TestGuard_Lookup_Hit(t *testing.T) {
	var requestedKey string
	store := &fakeStore{
		getFunc: func(ctx context.Context, key string) (string, error) {
			requestedKey = key
			return `{"id":"abc"}`, nil
		},
	}
	guard := NewGuard(store, testLogger(), Config{TTL: time.Hour})

	body, found, err := guard.Lookup(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatalf("expected a replay hit")
	}
	if body != `{"id":"abc"}` {
		t.Errorf("expected stored body back verbatim, got %q", body)
	}
	if requestedKey != "idempotency:req-1" {
		t.Errorf("expected namespaced key, got %q", requestedKey)
	}
}

func TestGuard_Lookup_Miss(t *testing.T) {
	store := &fakeStore{
		getFunc: func(ctx context.Context, key string) (string, error) {
			return "", cache.ErrMiss
		},
	}
	guard := NewGuard(store, testLogger(), Config{TTL: time.Hour})

	_, found, err := guard.Lookup(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Errorf("miss should not report a hit")
	}
}

func TestGuard_Lookup_OutageBestEffort(t *testing.T) {
	store := &fakeStore{
		getFunc: func(ctx context.Context, key string) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	guard := NewGuard(store, testLogger(), Config{TTL: time.Hour})

	_, found, err := guard.Lookup(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("best-effort mode should swallow outages, got %v", err)
	}
	if found {
		t.Errorf("outage must not look like a replay hit")
	}
}

func TestGuard_Lookup_OutageStrict(t *testing.T) {
	store := &fakeStore{
		getFunc: func(ctx context.Context, key string) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	guard := NewGuard(store, testLogger(), Config{TTL: time.Hour, Strict: true})

	_, _, err := guard.Lookup(context.Background(), "req-1")
	if err == nil {
		t.Fatalf("strict mode should refuse on outage")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeUnavailable {
		t.Errorf("expected code %s, got %s", apperrors.CodeUnavailable, appErr.Code)
	}
}

func TestGuard_Record(t *testing.T) {
	var gotKey, gotValue string
	var gotTTL time.Duration
	store := &fakeStore{
		setFunc: func(ctx context.Context, key, value string, ttl time.Duration) error {
			gotKey, gotValue, gotTTL = key, value, ttl
			return nil
		},
	}
	guard := NewGuard(store, testLogger(), Config{TTL: 24 * time.Hour})

	if err := guard.Record(context.Background(), "req-1", `{"id":"abc"}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "idempotency:req-1" {
		t.Errorf("expected namespaced key, got %q", gotKey)
	}
	if gotValue != `{"id":"abc"}` {
		t.Errorf("expected body stored verbatim, got %q", gotValue)
	}
	if gotTTL != 24*time.Hour {
		t.Errorf("expected configured TTL, got %s", gotTTL)
	}
}

func TestGuard_Once(t *testing.T) {
	tests := []struct {
		name      string
		setNX     func(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
		strict    bool
		wantFirst bool
		wantErr   bool
	}{
		{
			name: "first claim wins",
			setNX: func(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
				return true, nil
			},
			wantFirst: true,
		},
		{
			name: "second claim loses",
			setNX: func(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
				return false, nil
			},
			wantFirst: false,
		},
		{
			name: "outage best-effort lets request through",
			setNX: func(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
				return false, errors.New("connection refused")
			},
			wantFirst: true,
		},
		{
			name: "outage strict refuses",
			setNX: func(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
				return false, errors.New("connection refused")
			},
			strict:  true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{setNXFunc: tt.setNX}
			guard := NewGuard(store, testLogger(), Config{TTL: time.Hour, Strict: tt.strict})

			first, err := guard.Once(context.Background(), "user-42", 10*time.Minute)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if first != tt.wantFirst {
				t.Errorf("Once() = %v, want %v", first, tt.wantFirst)
			}
		})
	}
}
