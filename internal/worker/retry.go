package worker

import (
	"math"
	"time"
)

// RetryPolicy controls how often a failed snapshot write is re-queued.
// Zero fields take the snapshot defaults below.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

const (
	defaultSnapshotRetries = 5
	defaultSnapshotDelay   = 200 * time.Millisecond
	defaultSnapshotCeiling = 30 * time.Second
	defaultSnapshotFactor  = 2
)

func (r RetryPolicy) withDefaults() RetryPolicy {
	if r.MaxRetries <= 0 {
		r.MaxRetries = defaultSnapshotRetries
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = defaultSnapshotDelay
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = defaultSnapshotCeiling
	}
	if r.BackoffFactor <= 1 {
		r.BackoffFactor = defaultSnapshotFactor
	}
	return r
}

// Exhausted reports whether a task that has failed attempt times should be dropped.
func (r RetryPolicy) Exhausted(attempt int) bool {
	return attempt > r.withDefaults().MaxRetries
}

// NextDelay is the wait before retry number attempt (1-based), capped at MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	r = r.withDefaults()
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	if delay >= float64(r.MaxDelay) {
		return r.MaxDelay
	}
	return time.Duration(delay)
}
