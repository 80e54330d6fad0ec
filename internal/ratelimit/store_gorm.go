package ratelimit

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/domain"
)

// GormStore keeps one rate_limit_records row per admitted request.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore uses the writer connection for reads as well; a lagging
// replica would under-count.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Count(ctx context.Context, key Key, since time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.RateLimitRecord{}).
		Where("identifier = ? AND endpoint = ? AND timestamp >= ?", key.Identifier, key.Endpoint, since.UTC()).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count rate limit records: %w", err)
	}
	return count, nil
}

func (s *GormStore) Add(ctx context.Context, key Key, at time.Time, _ time.Duration) error {
	record := &domain.RateLimitRecord{
		Identifier: key.Identifier,
		Endpoint:   key.Endpoint,
		Timestamp:  at.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create rate limit record: %w", err)
	}
	return nil
}

func (s *GormStore) Prune(ctx context.Context, key Key, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("endpoint = ? AND timestamp < ?", key.Endpoint, before.UTC()).
		Delete(&domain.RateLimitRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune rate limit records: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormStore) PruneAll(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("timestamp < ?", before.UTC()).
		Delete(&domain.RateLimitRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep rate limit records: %w", result.Error)
	}
	return result.RowsAffected, nil
}
