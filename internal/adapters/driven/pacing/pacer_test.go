package pacing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum time.Duration
	for _, d := range c.sleeps {
		sum += d
	}
	return sum
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2*time.Second, cfg.ItemDelay)
	assert.Equal(t, 5*time.Second, cfg.BatchDelay)
	assert.Zero(t, cfg.RequestsPerMinute)
	assert.Equal(t, 60*time.Second, cfg.Backoff)
}

func TestFromSettings(t *testing.T) {
	assert.Equal(t, DefaultConfig(), FromSettings(domain.DefaultAppSettings().Pacing))

	cfg := FromSettings(domain.PacingSettings{
		ItemDelay:         time.Second,
		BatchDelay:        3 * time.Second,
		RequestsPerMinute: 30,
		Burst:             2,
		Backoff:           10 * time.Second,
	})
	assert.Equal(t, Config{
		ItemDelay:         time.Second,
		BatchDelay:        3 * time.Second,
		RequestsPerMinute: 30,
		Burst:             2,
		Backoff:           10 * time.Second,
	}, cfg)
}

func TestPacer_FixedDelays(t *testing.T) {
	clock := newFakeClock()
	p := New(DefaultConfig(), WithClock(clock))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(ctx))
		require.NoError(t, p.AfterItem(ctx))
	}
	require.NoError(t, p.AfterBatch(ctx))

	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second, 5 * time.Second}, clock.sleeps)
}

func TestPacer_ZeroDelaysDoNotSleep(t *testing.T) {
	clock := newFakeClock()
	p := New(Config{}, WithClock(clock))
	ctx := context.Background()

	require.NoError(t, p.Wait(ctx))
	require.NoError(t, p.AfterItem(ctx))
	require.NoError(t, p.AfterBatch(ctx))
	assert.Empty(t, clock.sleeps)
}

func TestPacer_Backoff(t *testing.T) {
	clock := newFakeClock()
	p := New(Config{}, WithClock(clock))
	ctx := context.Background()

	p.Backoff(30 * time.Second)
	require.NoError(t, p.Wait(ctx))
	assert.Equal(t, []time.Duration{30 * time.Second}, clock.sleeps)

	// window has passed
	require.NoError(t, p.Wait(ctx))
	assert.Len(t, clock.sleeps, 1)
}

func TestPacer_BackoffDefault(t *testing.T) {
	clock := newFakeClock()
	p := New(Config{Backoff: 10 * time.Second}, WithClock(clock))

	p.Backoff(0)
	require.NoError(t, p.Wait(context.Background()))
	assert.Equal(t, []time.Duration{10 * time.Second}, clock.sleeps)
}

func TestPacer_BackoffKeepsLongestWindow(t *testing.T) {
	clock := newFakeClock()
	p := New(Config{}, WithClock(clock))

	p.Backoff(40 * time.Second)
	p.Backoff(5 * time.Second)
	require.NoError(t, p.Wait(context.Background()))
	assert.Equal(t, []time.Duration{40 * time.Second}, clock.sleeps)
}

func TestPacer_TokenBucket(t *testing.T) {
	clock := newFakeClock()
	p := New(Config{RequestsPerMinute: 60, Burst: 1}, WithClock(clock))
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, p.Wait(ctx))
	}

	// first call uses the burst token, the next three wait a second each
	assert.Equal(t, 3*time.Second, clock.total())
}

func TestPacer_CancelledContext(t *testing.T) {
	clock := newFakeClock()
	p := New(DefaultConfig(), WithClock(clock))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.AfterItem(ctx), context.Canceled)
	assert.ErrorIs(t, p.AfterBatch(ctx), context.Canceled)
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}

func TestSystemClock_SleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SystemClock{}.Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
