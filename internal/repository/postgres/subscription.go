package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
)

// SubscriptionRepository provisions subscriptions and locks them for
// row-counted quotas; AI usage accounting goes through quota.Tracker.
type SubscriptionRepository struct {
	writerDB *gorm.DB
}

func NewSubscriptionRepository(writerDB *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{writerDB: writerDB}
}

func (r *SubscriptionRepository) Create(ctx context.Context, scope tenancy.Scope, sub *domain.Subscription) error {
	if err := scope.Stamp(sub); err != nil {
		return err
	}
	return translateError(r.writerDB.WithContext(ctx).Create(sub).Error, "failed to create subscription")
}

// LockActive touches updated_at on the tenant's active subscriptions. The
// write holds a row lock on Postgres and the database write lock on SQLite,
// so a second transaction for the same tenant blocks here until the first
// commits. Only meaningful inside Transaction.
func (r *SubscriptionRepository) LockActive(ctx context.Context, scope tenancy.Scope) (*domain.Subscription, error) {
	touch, err := scoped(ctx, r.writerDB, scope)
	if err != nil {
		return nil, err
	}
	err = touch.Model(&domain.Subscription{}).
		Where("status IN ?", domain.ActiveSubscriptionStatuses).
		Update("updated_at", time.Now().UTC()).Error
	if err != nil {
		return nil, translateError(err, "failed to lock subscription")
	}

	db, err := scoped(ctx, r.writerDB, scope)
	if err != nil {
		return nil, err
	}

	var sub domain.Subscription
	err = db.Where("status IN ?", domain.ActiveSubscriptionStatuses).
		Order("created_at DESC").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err, "failed to load subscription")
	}
	return &sub, nil
}
