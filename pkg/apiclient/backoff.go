package apiclient

import (
	"math/rand"
	"time"
)

// BackoffPolicy computes the wait before retry number attempt (1-based).
// Policies are pure functions of the attempt index so retry timing is
// reproducible in tests; randomness is opt-in via WithJitter.
type BackoffPolicy func(attempt int) time.Duration

// ExponentialBackoff doubles the wait on every retry: base, 2*base, 4*base.
func ExponentialBackoff(base time.Duration) BackoffPolicy {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		if attempt > 20 {
			attempt = 20 // shift saturates well past any sane retry budget
		}
		return base << uint(attempt-1)
	}
}

// ConstantBackoff waits the same duration before every retry.
func ConstantBackoff(d time.Duration) BackoffPolicy {
	return func(int) time.Duration { return d }
}

// WithJitter spreads a policy's waits uniformly within +/- fraction of the
// computed value so simultaneous clients do not retry in lockstep.
func WithJitter(policy BackoffPolicy, fraction float64) BackoffPolicy {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return func(attempt int) time.Duration {
		d := policy(attempt)
		if d <= 0 || fraction == 0 {
			return d
		}
		span := float64(d) * fraction
		out := time.Duration(float64(d) + (rand.Float64()*2-1)*span)
		if out <= 0 {
			out = time.Millisecond
		}
		return out
	}
}
