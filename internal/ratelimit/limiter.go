// Package ratelimit implements a sliding-window request limiter keyed by
// caller identity and endpoint.
package ratelimit

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/clinic-access-core/internal/metrics"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

const DefaultCleanupProbability = 0.01

// Key identifies one sliding window.
type Key struct {
	Identifier string
	Endpoint   string
}

// Store persists admitted requests.
type Store interface {
	// Count returns the number of requests for key at or after since.
	Count(ctx context.Context, key Key, since time.Time) (int64, error)
	// Add records one admitted request. window is how long the record matters.
	Add(ctx context.Context, key Key, at time.Time, window time.Duration) error
	// Prune removes records of key's endpoint older than before.
	Prune(ctx context.Context, key Key, before time.Time) (int64, error)
	// PruneAll removes every record older than before.
	PruneAll(ctx context.Context, before time.Time) (int64, error)
}

// Decision describes the outcome of a Check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type Limiter struct {
	store              Store
	logger             *logger.Logger
	metrics            *metrics.Metrics
	now                func() time.Time
	random             func() float64
	cleanupProbability float64
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithCleanupProbability sets the chance that an admission also prunes
// expired records. 0 disables pruning on the request path.
func WithCleanupProbability(p float64) Option {
	return func(l *Limiter) {
		l.cleanupProbability = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

// WithRandom replaces the source of the cleanup coin flip.
func WithRandom(random func() float64) Option {
	return func(l *Limiter) {
		l.random = random
	}
}

func NewLimiter(store Store, log *logger.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		store:              store,
		logger:             log,
		now:                time.Now,
		random:             rand.Float64,
		cleanupProbability: DefaultCleanupProbability,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit reports whether a request from identifier to endpoint fits within
// limit requests per window, recording it when it does.
//
// Admit fails open: when the store cannot be read or written the request is
// admitted and the error is logged. The count and the insert are separate
// operations, so concurrent callers may slightly exceed limit.
func (l *Limiter) Admit(ctx context.Context, identifier, endpoint string, limit int, window time.Duration) bool {
	return l.Check(ctx, identifier, endpoint, limit, window).Allowed
}

// Check is Admit with the details needed for rate limit headers.
func (l *Limiter) Check(ctx context.Context, identifier, endpoint string, limit int, window time.Duration) Decision {
	now := l.now().UTC()
	key := Key{Identifier: identifier, Endpoint: endpoint}
	decision := Decision{Limit: limit, ResetAt: now.Add(window)}

	count, err := l.store.Count(ctx, key, now.Add(-window))
	if err != nil {
		l.logger.Warn("Rate limit store unavailable, admitting request",
			zap.String("endpoint", endpoint), zap.Error(err))
		decision.Allowed = true
		decision.Remaining = max(limit-1, 0)
		l.metrics.RateLimitDecision(endpoint, true)
		return decision
	}

	if count >= int64(limit) {
		decision.Remaining = 0
		l.metrics.RateLimitDecision(endpoint, false)
		return decision
	}

	if err := l.store.Add(ctx, key, now, window); err != nil {
		l.logger.Warn("Failed to record rate limit hit",
			zap.String("endpoint", endpoint), zap.Error(err))
	}

	decision.Allowed = true
	decision.Remaining = max(limit-int(count)-1, 0)
	l.metrics.RateLimitDecision(endpoint, true)

	if l.cleanupProbability > 0 && l.random() < l.cleanupProbability {
		l.prune(ctx, key, now.Add(-window))
	}

	return decision
}

func (l *Limiter) prune(ctx context.Context, key Key, before time.Time) {
	removed, err := l.store.Prune(ctx, key, before)
	if err != nil {
		l.logger.Warn("Rate limit cleanup failed", zap.String("endpoint", key.Endpoint), zap.Error(err))
		return
	}
	if removed > 0 {
		l.logger.Debug("Pruned rate limit records", zap.String("endpoint", key.Endpoint), zap.Int64("removed", removed))
	}
}

// Sweep removes all records older than retention. It is run on a timer by
// the sweeper worker.
func (l *Limiter) Sweep(ctx context.Context, retention time.Duration) (int64, error) {
	return l.store.PruneAll(ctx, l.now().UTC().Add(-retention))
}
