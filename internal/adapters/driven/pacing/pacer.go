// Package pacing spaces out calls to rate-limited embedding providers.
//
// A Pacer combines fixed delays after each item and batch, an optional
// token bucket, and a backoff window opened by rate limit rejections.
package pacing

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/lecturelens/internal/core/domain"
	"github.com/custodia-labs/lecturelens/internal/core/ports/driven"
	"github.com/custodia-labs/lecturelens/internal/logger"
)

// Ensure Pacer implements the interface.
var _ driven.Pacer = (*Pacer)(nil)

// Config holds pacing configuration.
type Config struct {
	// ItemDelay is slept after every item. Zero disables it.
	ItemDelay time.Duration

	// BatchDelay is slept after every batch. Zero disables it.
	BatchDelay time.Duration

	// RequestsPerMinute enables a token bucket when positive.
	RequestsPerMinute float64

	// Burst is the token bucket size.
	Burst int

	// Backoff is used when a rate limit error carries no retry hint.
	Backoff time.Duration
}

// DefaultConfig returns the default pacing configuration.
func DefaultConfig() Config {
	return Config{
		ItemDelay:  domain.DefaultItemDelay,
		BatchDelay: domain.DefaultBatchDelay,
		Burst:      1,
		Backoff:    domain.DefaultBackoff,
	}
}

// FromSettings converts pacing settings to a Config.
func FromSettings(s domain.PacingSettings) Config {
	return Config{
		ItemDelay:         s.ItemDelay,
		BatchDelay:        s.BatchDelay,
		RequestsPerMinute: s.RequestsPerMinute,
		Burst:             s.Burst,
		Backoff:           s.Backoff,
	}
}

// Pacer enforces delays between provider calls.
type Pacer struct {
	mu      sync.Mutex
	cfg     Config
	clock   Clock
	limiter *rate.Limiter
	retryAt time.Time
}

// Option configures a Pacer.
type Option func(*Pacer)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(p *Pacer) {
		if c != nil {
			p.clock = c
		}
	}
}

// New creates a pacer from cfg.
func New(cfg Config, opts ...Option) *Pacer {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = domain.DefaultBackoff
	}

	p := &Pacer{
		cfg:   cfg,
		clock: SystemClock{},
	}
	if cfg.RequestsPerMinute > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60), cfg.Burst)
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the pacer's configuration.
func (p *Pacer) Config() Config {
	return p.cfg
}

// Wait blocks until the backoff window has passed and a token is available.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	retryAt := p.retryAt
	p.mu.Unlock()

	if now := p.clock.Now(); now.Before(retryAt) {
		wait := retryAt.Sub(now)
		logger.Debug("pacing: backing off for %s", wait)
		if err := p.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}

	if p.limiter == nil {
		return ctx.Err()
	}

	now := p.clock.Now()
	r := p.limiter.ReserveN(now, 1)
	if !r.OK() {
		return domain.ErrRateLimited
	}
	if delay := r.DelayFrom(now); delay > 0 {
		if err := p.clock.Sleep(ctx, delay); err != nil {
			r.CancelAt(now)
			return err
		}
	}
	return nil
}

// AfterItem sleeps the per-item delay.
func (p *Pacer) AfterItem(ctx context.Context) error {
	return p.sleep(ctx, p.cfg.ItemDelay)
}

// AfterBatch sleeps the per-batch delay.
func (p *Pacer) AfterBatch(ctx context.Context) error {
	if p.cfg.BatchDelay > 0 {
		logger.Debug("pacing: waiting %s before next batch", p.cfg.BatchDelay)
	}
	return p.sleep(ctx, p.cfg.BatchDelay)
}

// Backoff opens a window during which Wait blocks.
// A zero or negative retryAfter uses the configured backoff.
func (p *Pacer) Backoff(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = p.cfg.Backoff
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	until := p.clock.Now().Add(retryAfter)
	if until.After(p.retryAt) {
		p.retryAt = until
	}
}

func (p *Pacer) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	return p.clock.Sleep(ctx, d)
}
