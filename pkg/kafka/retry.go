package kafka

import "time"

// RetryPolicy paces redelivery of failed handler invocations. Attempt n
// waits InitialBackoff * Multiplier^(n-1), capped at MaxBackoff.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	Multiplier     float64
	MaxBackoff     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 2 * time.Second,
		Multiplier:     2.0,
		MaxBackoff:     10 * time.Second,
	}
}

// Interval returns the wait before the given attempt. Attempts are
// 1-based: attempt 1 is the first retry.
func (p RetryPolicy) Interval(attempt int) time.Duration {
	if attempt <= 1 {
		return p.InitialBackoff
	}
	backoff := float64(p.InitialBackoff)
	for i := 1; i < attempt; i++ {
		backoff *= p.Multiplier
		if time.Duration(backoff) >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if d := time.Duration(backoff); d < p.MaxBackoff {
		return d
	}
	return p.MaxBackoff
}

// Exhausted reports whether all attempts have been used.
func (p RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= p.MaxAttempts
}
