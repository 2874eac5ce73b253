package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorik/updraft"
	"github.com/quorik/updraft/types"
)

// fakeClock supplies a controllable time source.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func inputFrom(chatID, userID int64) updraft.Input {
	update := &types.Update{
		ID: 1,
		Message: &types.Message{
			Chat: types.Chat{ID: chatID, Type: types.ChatTypeGroup},
			From: &types.User{ID: userID},
		},
	}
	return updraft.Input{Update: update, Context: updraft.NewContext()}
}

func TestDirectDiscard(t *testing.T) {
	clock := newFakeClock()
	limiter, err := DirectDiscard(Quota{Burst: 2, Period: time.Minute})
	require.NoError(t, err)
	limiter.now = clock.now

	in := inputFrom(1, 1)
	ctx := context.Background()

	assert.True(t, limiter.Check(ctx, in).Allowed())
	assert.True(t, limiter.Check(ctx, in).Allowed())

	verdict := limiter.Check(ctx, in)
	require.False(t, verdict.Allowed())
	// A discarded update skips the guarded handler without stopping the
	// pipeline.
	assert.False(t, verdict.Result().Stops())

	// Half the period refills one of the two burst tokens.
	clock.advance(30 * time.Second)
	assert.True(t, limiter.Check(ctx, in).Allowed())
	assert.False(t, limiter.Check(ctx, in).Allowed())
}

func TestDirectWait(t *testing.T) {
	limiter, err := DirectWait(Quota{Burst: 1, Period: 30 * time.Millisecond})
	require.NoError(t, err)

	in := inputFrom(1, 1)
	ctx := context.Background()

	start := time.Now()
	assert.True(t, limiter.Check(ctx, in).Allowed())
	assert.True(t, limiter.Check(ctx, in).Allowed())
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestDirectWaitCancelled(t *testing.T) {
	limiter, err := DirectWait(Quota{Burst: 1, Period: time.Hour})
	require.NoError(t, err)

	in := inputFrom(1, 1)
	require.True(t, limiter.Check(context.Background(), in).Allowed())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	verdict := limiter.Check(ctx, in)
	require.False(t, verdict.Allowed())
	assert.ErrorIs(t, verdict.Result().Err(), context.Canceled)
}

func TestKeyedWaitCancelledCallerConsumesNothing(t *testing.T) {
	clock := newFakeClock()
	limiter, err := KeyedWait(KeyChat, Quota{Burst: 1, Period: time.Hour})
	require.NoError(t, err)
	limiter.now = clock.now

	in := inputFrom(1, 1)
	require.True(t, limiter.Check(context.Background(), in).Allowed())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	verdict := limiter.Check(cancelled, in)
	require.False(t, verdict.Allowed())
	require.ErrorIs(t, verdict.Result().Err(), context.Canceled)

	// One refill period frees exactly the one slot the admitted caller
	// used; the cancelled caller must not have booked another.
	clock.advance(time.Hour)
	ctx, stop := context.WithTimeout(context.Background(), time.Second)
	defer stop()
	assert.True(t, limiter.Check(ctx, in).Allowed())
}

func TestDirectWaitRollsBackOnCancellation(t *testing.T) {
	limiter, err := DirectWait(Quota{Burst: 1, Period: 50 * time.Millisecond})
	require.NoError(t, err)

	in := inputFrom(1, 1)
	require.True(t, limiter.Check(context.Background(), in).Allowed())

	// A caller that gives up mid-wait hands its booked cell back.
	short, stop := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer stop()
	verdict := limiter.Check(short, in)
	require.False(t, verdict.Allowed())
	require.ErrorIs(t, verdict.Result().Err(), context.DeadlineExceeded)

	start := time.Now()
	assert.True(t, limiter.Check(context.Background(), in).Allowed())
	// Waiting out two emission intervals would mean the cancelled caller
	// still held a slot.
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestDirectWaitWithJitter(t *testing.T) {
	limiter, err := DirectWaitWithJitter(Quota{Burst: 1, Period: 10 * time.Millisecond}, UpTo(5*time.Millisecond))
	require.NoError(t, err)

	in := inputFrom(1, 1)
	assert.True(t, limiter.Check(context.Background(), in).Allowed())
	assert.True(t, limiter.Check(context.Background(), in).Allowed())
}

func TestKeyedDiscard(t *testing.T) {
	clock := newFakeClock()
	limiter, err := KeyedDiscard(KeyChat, PerMinute(1))
	require.NoError(t, err)
	limiter.now = clock.now

	ctx := context.Background()

	// A fresh key passes; an immediate second call for the same key fails.
	assert.True(t, limiter.Check(ctx, inputFrom(1, 1)).Allowed())
	assert.False(t, limiter.Check(ctx, inputFrom(1, 1)).Allowed())

	// Other chats have their own bucket.
	assert.True(t, limiter.Check(ctx, inputFrom(2, 1)).Allowed())

	// The refill period frees the first chat again.
	clock.advance(time.Minute)
	assert.True(t, limiter.Check(ctx, inputFrom(1, 1)).Allowed())
}

func TestKeyedDiscardAllowList(t *testing.T) {
	limiter, err := KeyedDiscard(KeyChat, PerMinute(1), WithKeys("chat:1"))
	require.NoError(t, err)

	ctx := context.Background()

	assert.True(t, limiter.Check(ctx, inputFrom(1, 1)).Allowed())
	assert.False(t, limiter.Check(ctx, inputFrom(1, 1)).Allowed())

	// A key outside the allow-list always passes and books no bucket.
	for i := 0; i < 5; i++ {
		assert.True(t, limiter.Check(ctx, inputFrom(2, 1)).Allowed())
	}
	assert.Len(t, limiter.buckets, 1)
}

func TestKeyedPassesUpdatesWithoutKey(t *testing.T) {
	limiter, err := KeyedDiscard(KeyUser, PerMinute(1))
	require.NoError(t, err)

	in := updraft.Input{Update: &types.Update{ID: 1}, Context: updraft.NewContext()}
	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Check(context.Background(), in).Allowed())
	}
	assert.Empty(t, limiter.buckets)
}

func TestKeyedEviction(t *testing.T) {
	clock := newFakeClock()
	limiter, err := KeyedDiscard(KeyChat, PerSecond(1), WithEviction(time.Minute))
	require.NoError(t, err)
	limiter.now = clock.now

	ctx := context.Background()
	assert.True(t, limiter.Check(ctx, inputFrom(1, 1)).Allowed())
	assert.True(t, limiter.Check(ctx, inputFrom(2, 1)).Allowed())
	require.Len(t, limiter.buckets, 2)

	// Idle buckets are swept once the TTL elapses; the touching key stays.
	clock.advance(2 * time.Minute)
	assert.True(t, limiter.Check(ctx, inputFrom(3, 1)).Allowed())
	assert.Len(t, limiter.buckets, 1)
}

func TestKeyFuncs(t *testing.T) {
	in := inputFrom(7, 9)
	ctx := context.Background()

	key, ok := KeyChat(ctx, in)
	require.True(t, ok)
	assert.Equal(t, "chat:7", key)

	key, ok = KeyUser(ctx, in)
	require.True(t, ok)
	assert.Equal(t, "user:9", key)

	key, ok = KeyChatUser(ctx, in)
	require.True(t, ok)
	assert.Equal(t, "chat:7:user:9", key)

	empty := updraft.Input{Update: &types.Update{ID: 1}, Context: updraft.NewContext()}
	_, ok = KeyChat(ctx, empty)
	assert.False(t, ok)
	_, ok = KeyChatUser(ctx, empty)
	assert.False(t, ok)
}

func TestQuotaValidation(t *testing.T) {
	_, err := DirectDiscard(Quota{})
	assert.ErrorIs(t, err, errInvalidQuota)

	_, err = KeyedDiscard(KeyChat, Quota{Burst: -1, Period: time.Second})
	assert.ErrorIs(t, err, errInvalidQuota)

	_, err = DirectWaitWithJitter(PerSecond(1), Jitter{Min: time.Second, Max: time.Millisecond})
	assert.ErrorIs(t, err, errInvalidJitter)
}
