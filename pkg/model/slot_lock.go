package model

import "time"

// SlotLock represents an advisory lock taken while a booking admission is
// in flight. It is a lightweight guard against racing overlap checks, not
// a reservation: the booking document is the source of truth.
type SlotLock struct {
	Key        string    `json:"key"`
	Owner      string    `json:"owner"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the lock's TTL has elapsed at the given instant.
func (l *SlotLock) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}
