// Package quota meters tenant usage against the limits of the active
// subscription.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/metrics"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

type ResourceKind string

const (
	ResourceAIQuery ResourceKind = "AI_QUERY"
	ResourcePatient ResourceKind = "PATIENT"
	ResourceUser    ResourceKind = "USER"
)

type Outcome string

const (
	Consumed             Outcome = "CONSUMED"
	LimitReached         Outcome = "LIMIT_REACHED"
	NoActiveSubscription Outcome = "NO_ACTIVE_SUBSCRIPTION"
)

// Err converts a rejecting outcome into the matching apperror.
func (o Outcome) Err(kind ResourceKind) error {
	switch o {
	case LimitReached:
		return apperror.New(apperror.KindQuotaExceeded, fmt.Sprintf("%s quota exhausted for the current period", kind))
	case NoActiveSubscription:
		return apperror.New(apperror.KindNoActiveSubscription, "tenant has no active subscription")
	default:
		return nil
	}
}

type Tracker struct {
	db      *gorm.DB
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) {
		t.metrics = m
	}
}

// NewTracker needs the writer connection: consumption is a conditional
// update and must see its own writes.
func NewTracker(db *gorm.DB, log *logger.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		db:     db,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CheckAndConsume admits amount units of kind for the scoped tenant.
//
// AI queries are metered with a single conditional UPDATE, so concurrent
// callers can never push ai_queries_used past a finite limit. An unlimited
// plan (-1) always consumes without touching the counter. Patients and users
// are capped by counting existing rows; nothing is incremented for them, so
// a caller that goes on to insert a row must use Reserve instead.
//
// A tenant without an ACTIVE or TRIALING subscription gets
// NoActiveSubscription. Persistence errors are returned, never treated as
// Consumed.
func (t *Tracker) CheckAndConsume(ctx context.Context, scope tenancy.Scope, kind ResourceKind, amount int) (Outcome, error) {
	outcome, err := t.checkAndConsume(ctx, scope, kind, amount)
	if err == nil {
		t.metrics.QuotaOutcome(string(kind), string(outcome))
	}
	return outcome, err
}

func (t *Tracker) checkAndConsume(ctx context.Context, scope tenancy.Scope, kind ResourceKind, amount int) (Outcome, error) {
	if amount <= 0 {
		return "", apperror.New(apperror.KindInvalidInput, "amount must be positive")
	}

	sub, err := t.current(ctx, scope)
	if err != nil {
		return "", err
	}
	if sub == nil {
		return NoActiveSubscription, nil
	}

	switch kind {
	case ResourceAIQuery:
		return t.consumeAIQueries(ctx, scope, sub, amount)
	case ResourcePatient:
		return t.checkCount(ctx, scope, &domain.Patient{}, sub.MaxPatients, amount)
	case ResourceUser:
		return t.checkCount(ctx, scope, &domain.User{}, sub.MaxUsers, amount)
	default:
		return "", apperror.New(apperror.KindInvalidInput, fmt.Sprintf("unknown resource kind %q", kind))
	}
}

// Reserve admits amount more patients or users for the scoped tenant inside
// tx, a repository transaction in which the caller then inserts the rows.
// The tenant's subscription is write-locked before counting, so concurrent
// reservations for one tenant run one after another and the count always
// includes rows inserted by earlier, committed reservations.
func (t *Tracker) Reserve(ctx context.Context, tx repository.PostgresRepository, scope tenancy.Scope, kind ResourceKind, amount int) (Outcome, error) {
	outcome, err := t.reserve(ctx, tx, scope, kind, amount)
	if err == nil {
		t.metrics.QuotaOutcome(string(kind), string(outcome))
	}
	return outcome, err
}

func (t *Tracker) reserve(ctx context.Context, tx repository.PostgresRepository, scope tenancy.Scope, kind ResourceKind, amount int) (Outcome, error) {
	if amount <= 0 {
		return "", apperror.New(apperror.KindInvalidInput, "amount must be positive")
	}

	var count func(context.Context, tenancy.Scope) (int64, error)
	switch kind {
	case ResourcePatient:
		count = tx.Patient().Count
	case ResourceUser:
		count = tx.User().CountByTenant
	default:
		return "", apperror.New(apperror.KindInvalidInput, fmt.Sprintf("%s is not a row-counted resource", kind))
	}

	sub, err := tx.Subscription().LockActive(ctx, scope)
	if err != nil {
		return "", err
	}
	if sub == nil {
		return NoActiveSubscription, nil
	}

	limit := sub.MaxPatients
	if kind == ResourceUser {
		limit = sub.MaxUsers
	}
	if limit == domain.UnlimitedQuota {
		return Consumed, nil
	}

	existing, err := count(ctx, scope)
	if err != nil {
		return "", err
	}
	if existing+int64(amount) > int64(limit) {
		return LimitReached, nil
	}
	return Consumed, nil
}

// Usage returns the tenant's current subscription with any due period
// rollover applied.
func (t *Tracker) Usage(ctx context.Context, scope tenancy.Scope) (*domain.Subscription, error) {
	sub, err := t.current(ctx, scope)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, NoActiveSubscription.Err(ResourceAIQuery)
	}
	return sub, nil
}

func (t *Tracker) consumeAIQueries(ctx context.Context, scope tenancy.Scope, sub *domain.Subscription, amount int) (Outcome, error) {
	if sub.AIQueriesLimit == domain.UnlimitedQuota {
		return Consumed, nil
	}

	query, err := scope.Apply(t.db.WithContext(ctx).Model(&domain.Subscription{}))
	if err != nil {
		return "", err
	}

	result := query.
		Where("id = ? AND ai_queries_used + ? <= ai_queries_limit", sub.ID, amount).
		Updates(map[string]any{
			"ai_queries_used": gorm.Expr("ai_queries_used + ?", amount),
			"updated_at":      t.now().UTC(),
		})
	if result.Error != nil {
		return "", apperror.Wrap(apperror.KindPersistenceUnavailable, "failed to consume AI quota", result.Error)
	}

	if result.RowsAffected == 0 {
		return LimitReached, nil
	}
	return Consumed, nil
}

func (t *Tracker) checkCount(ctx context.Context, scope tenancy.Scope, model any, limit, amount int) (Outcome, error) {
	if limit == domain.UnlimitedQuota {
		return Consumed, nil
	}

	query, err := scope.Apply(t.db.WithContext(ctx).Model(model))
	if err != nil {
		return "", err
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return "", apperror.Wrap(apperror.KindPersistenceUnavailable, "failed to count tenant resources", err)
	}

	if count+int64(amount) > int64(limit) {
		return LimitReached, nil
	}
	return Consumed, nil
}

// current loads the active subscription, rolling its period forward first
// when it has ended. Returns nil when the tenant has none.
func (t *Tracker) current(ctx context.Context, scope tenancy.Scope) (*domain.Subscription, error) {
	query, err := scope.Apply(t.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	var sub domain.Subscription
	err = query.
		Where("status IN ?", domain.ActiveSubscriptionStatuses).
		Order("created_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindPersistenceUnavailable, "failed to load subscription", err)
	}

	now := t.now().UTC()
	if now.Before(sub.CurrentPeriodEnd) {
		return &sub, nil
	}

	if err := t.rollover(ctx, scope, &sub, now); err != nil {
		return nil, err
	}
	return &sub, nil
}

// rollover starts the period containing now and clears AI usage. The update
// is conditional on the period end that was read, so when several callers
// notice the same expired period only one resets it.
func (t *Tracker) rollover(ctx context.Context, scope tenancy.Scope, sub *domain.Subscription, now time.Time) error {
	length := sub.PeriodLength()
	if length <= 0 {
		return apperror.New(apperror.KindPersistenceUnavailable, "subscription has an empty billing period")
	}

	elapsed := now.Sub(sub.CurrentPeriodStart)
	start := sub.CurrentPeriodStart.Add(elapsed / length * length).UTC()
	end := start.Add(length)

	query, err := scope.Apply(t.db.WithContext(ctx).Model(&domain.Subscription{}))
	if err != nil {
		return err
	}

	result := query.
		Where("id = ? AND current_period_end = ?", sub.ID, sub.CurrentPeriodEnd).
		Updates(map[string]any{
			"ai_queries_used":      0,
			"current_period_start": start,
			"current_period_end":   end,
			"updated_at":           now,
		})
	if result.Error != nil {
		return apperror.Wrap(apperror.KindPersistenceUnavailable, "failed to roll subscription period", result.Error)
	}

	if result.RowsAffected > 0 {
		t.logger.Info("Subscription period rolled over",
			zap.String("tenant_id", scope.TenantID()),
			zap.String("subscription_id", sub.ID),
			zap.Time("period_start", start),
			zap.Time("period_end", end))
		sub.AIQueriesUsed = 0
		sub.CurrentPeriodStart = start
		sub.CurrentPeriodEnd = end
		return nil
	}

	// Another caller rolled the period first; reload its result.
	reload, err := scope.Apply(t.db.WithContext(ctx))
	if err != nil {
		return err
	}
	if err := reload.Where("id = ?", sub.ID).First(sub).Error; err != nil {
		return apperror.Wrap(apperror.KindPersistenceUnavailable, "failed to reload subscription", err)
	}
	return nil
}
