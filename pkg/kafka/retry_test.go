package kafka

import (
	"testing"
	"time"
)

func TestRetryPolicy_Interval(t *testing.T) {
	policy := DefaultRetryPolicy()

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: 2 * time.Second},
		{attempt: 2, want: 4 * time.Second},
		{attempt: 3, want: 8 * time.Second},
		{attempt: 4, want: 10 * time.Second}, // capped
		{attempt: 10, want: 10 * time.Second},
	}

	for _, tt := range tests {
		got := policy.Interval(tt.attempt)
		if got != tt.want {
			t.Errorf("Interval(%d) = %s, want %s", tt.attempt, got, tt.want)
		}
	}
}

func TestRetryPolicy_Exhausted(t *testing.T) {
	policy := DefaultRetryPolicy()

	if policy.Exhausted(2) {
		t.Errorf("attempt 2 of 3 should not be exhausted")
	}
	if !policy.Exhausted(3) {
		t.Errorf("attempt 3 of 3 should be exhausted")
	}
}
