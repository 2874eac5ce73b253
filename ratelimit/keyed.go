package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/quorik/updraft"
)

// Keyed is a rate-limit predicate with one lazily-created bucket per key.
// Updates that produce no key, or whose key falls outside a configured
// allow-list, pass through without consuming a token.
type Keyed struct {
	key    KeyFunc
	quota  Quota
	policy policy
	jitter Jitter

	mu      sync.Mutex
	buckets map[string]*gcra
	keys    map[string]struct{}

	evictTTL  time.Duration
	lastSweep time.Time

	now func() time.Time
}

// KeyedOption configures a keyed limiter.
type KeyedOption func(*Keyed)

// WithKeys restricts throttling to the given keys. Any other key is
// admitted unconditionally.
func WithKeys(keys ...string) KeyedOption {
	return func(k *Keyed) {
		k.keys = make(map[string]struct{}, len(keys))
		for _, key := range keys {
			k.keys[key] = struct{}{}
		}
	}
}

// WithEviction drops buckets that have been idle for at least ttl. The
// sweep runs opportunistically during Check, at most once per ttl. Off by
// default; the bucket map grows with the key space otherwise.
func WithEviction(ttl time.Duration) KeyedOption {
	return func(k *Keyed) {
		k.evictTTL = ttl
	}
}

// KeyedDiscard rejects updates immediately while their key's bucket is
// empty. Rejected updates skip the guarded handler.
func KeyedDiscard(key KeyFunc, quota Quota, opts ...KeyedOption) (*Keyed, error) {
	return newKeyed(key, quota, policyDiscard, Jitter{}, opts)
}

// KeyedWait suspends the caller until its key's bucket frees a token.
func KeyedWait(key KeyFunc, quota Quota, opts ...KeyedOption) (*Keyed, error) {
	return newKeyed(key, quota, policyWait, Jitter{}, opts)
}

// KeyedWaitWithJitter waits for a token and then sleeps a bounded random
// extra delay.
func KeyedWaitWithJitter(key KeyFunc, quota Quota, jitter Jitter, opts ...KeyedOption) (*Keyed, error) {
	return newKeyed(key, quota, policyWaitJitter, jitter, opts)
}

func newKeyed(key KeyFunc, quota Quota, p policy, jitter Jitter, opts []KeyedOption) (*Keyed, error) {
	if err := quota.validate(); err != nil {
		return nil, err
	}
	if err := jitter.validate(); err != nil {
		return nil, err
	}
	k := &Keyed{
		key:     key,
		quota:   quota,
		policy:  p,
		jitter:  jitter,
		buckets: make(map[string]*gcra),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k, nil
}

// Check implements updraft.Guard.
func (k *Keyed) Check(ctx context.Context, in updraft.Input) updraft.PredicateResult {
	key, ok := k.key(ctx, in)
	if !ok {
		return updraft.True()
	}
	if k.keys != nil {
		if _, throttled := k.keys[key]; !throttled {
			return updraft.True()
		}
	}

	if k.policy != policyDiscard {
		if err := ctx.Err(); err != nil {
			return updraft.False(updraft.Error(err))
		}
	}

	k.mu.Lock()
	now := k.now()
	k.sweep(now)
	bucket := k.buckets[key]
	if bucket == nil {
		bucket = newGCRA(k.quota)
		k.buckets[key] = bucket
	}
	if k.policy == policyDiscard {
		ok := bucket.allow(now)
		k.mu.Unlock()
		if !ok {
			return updraft.False(updraft.Continue)
		}
		return updraft.True()
	}
	delay := bucket.reserve(now)
	k.mu.Unlock()
	if err := waitAdmit(ctx, delay, k.policy, k.jitter); err != nil {
		// Return the booked cell so a cancelled caller does not starve
		// the key for legitimate traffic.
		k.mu.Lock()
		bucket.unreserve()
		k.mu.Unlock()
		return updraft.False(updraft.Error(err))
	}
	return updraft.True()
}

// sweep evicts idle buckets. Caller holds the lock.
func (k *Keyed) sweep(now time.Time) {
	if k.evictTTL <= 0 || now.Sub(k.lastSweep) < k.evictTTL {
		return
	}
	k.lastSweep = now
	for key, bucket := range k.buckets {
		if bucket.idleSince(now, k.evictTTL) {
			delete(k.buckets, key)
		}
	}
}
