package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
)

type APIKeyRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewAPIKeyRepository(writerDB, readerDB *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *APIKeyRepository) Create(ctx context.Context, scope tenancy.Scope, key *domain.APIKey) error {
	if err := scope.Stamp(key); err != nil {
		return err
	}
	return translateError(r.writerDB.WithContext(ctx).Create(key).Error, "failed to create api key")
}

func (r *APIKeyRepository) GetByID(ctx context.Context, scope tenancy.Scope, id string) (*domain.APIKey, error) {
	db, err := scoped(ctx, r.readerDB, scope)
	if err != nil {
		return nil, err
	}

	var key domain.APIKey
	if err := db.First(&key, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to get api key")
	}
	return &key, nil
}

func (r *APIKeyRepository) List(ctx context.Context, scope tenancy.Scope) ([]domain.APIKey, error) {
	db, err := scoped(ctx, r.readerDB, scope)
	if err != nil {
		return nil, err
	}

	keys := []domain.APIKey{}
	if err := db.Order("created_at DESC").Find(&keys).Error; err != nil {
		return nil, translateError(err, "failed to list api keys")
	}
	return keys, nil
}

// Update writes the mutable fields of key. The tenant filter is applied to
// the UPDATE itself, so a key id from another tenant changes nothing.
func (r *APIKeyRepository) Update(ctx context.Context, scope tenancy.Scope, key *domain.APIKey) error {
	db, err := scoped(ctx, r.writerDB, scope)
	if err != nil {
		return err
	}

	result := db.Model(&domain.APIKey{}).
		Where("id = ?", key.ID).
		Updates(map[string]any{
			"name":       key.Name,
			"provider":   key.Provider,
			"key_sealed": key.KeySealed,
			"key_prefix": key.KeyPrefix,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return translateError(result.Error, "failed to update api key")
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *APIKeyRepository) Delete(ctx context.Context, scope tenancy.Scope, id string) error {
	db, err := scoped(ctx, r.writerDB, scope)
	if err != nil {
		return err
	}

	result := db.Where("id = ?", id).Delete(&domain.APIKey{})
	if result.Error != nil {
		return translateError(result.Error, "failed to delete api key")
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
