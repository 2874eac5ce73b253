// Package ratelimit provides token-bucket admission control for update
// pipelines, pluggable as ordinary predicates.
//
// The limiter implements GCRA (generic cell rate algorithm): each bucket
// tracks a theoretical arrival time and admits a request when it does not
// run ahead of the configured quota. Buckets come in two flavors, one
// shared bucket (Direct) or one lazily created bucket per key (Keyed),
// combined with three admission policies: discard, wait, and wait with
// jitter.
package ratelimit

import (
	"errors"
	"time"
)

// Quota is a rate-limiting quota: Burst cells per Period.
type Quota struct {
	// Burst is the bucket capacity, at least 1.
	Burst int

	// Period is the refill period for a full bucket.
	Period time.Duration
}

// PerMinute allows burst cells per minute.
func PerMinute(burst int) Quota {
	return Quota{Burst: burst, Period: time.Minute}
}

// PerSecond allows burst cells per second.
func PerSecond(burst int) Quota {
	return Quota{Burst: burst, Period: time.Second}
}

var errInvalidQuota = errors.New("ratelimit: quota burst and period must be positive")

func (q Quota) validate() error {
	if q.Burst < 1 || q.Period <= 0 {
		return errInvalidQuota
	}
	return nil
}

// emission is the interval one cell adds to the theoretical arrival time.
func (q Quota) emission() time.Duration {
	return q.Period / time.Duration(q.Burst)
}

// gcra is a single token bucket. Callers provide their own locking.
type gcra struct {
	quota Quota
	// tat is the theoretical arrival time of the next conforming cell.
	tat time.Time
}

func newGCRA(quota Quota) *gcra {
	return &gcra{quota: quota}
}

// allow admits one cell at t when the bucket conforms, consuming a token.
func (g *gcra) allow(t time.Time) bool {
	newTat := g.tat
	if t.After(newTat) {
		newTat = t
	}
	newTat = newTat.Add(g.quota.emission())
	if allowAt := newTat.Add(-g.quota.Period); t.Before(allowAt) {
		return false
	}
	g.tat = newTat
	return true
}

// reserve books one cell at t unconditionally and returns how long the
// caller must wait before proceeding. Zero means proceed now.
func (g *gcra) reserve(t time.Time) time.Duration {
	newTat := g.tat
	if t.After(newTat) {
		newTat = t
	}
	newTat = newTat.Add(g.quota.emission())
	g.tat = newTat
	if allowAt := newTat.Add(-g.quota.Period); t.Before(allowAt) {
		return allowAt.Sub(t)
	}
	return 0
}

// unreserve returns one booked cell, undoing a reserve whose caller gave
// up before being admitted.
func (g *gcra) unreserve() {
	g.tat = g.tat.Add(-g.quota.emission())
}

// idleSince reports whether the bucket has been conforming and untouched
// long enough to be evicted.
func (g *gcra) idleSince(t time.Time, ttl time.Duration) bool {
	return t.Sub(g.tat) >= ttl
}
