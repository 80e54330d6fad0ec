package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
)

type UserRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewUserRepository(writerDB, readerDB *gorm.DB) *UserRepository {
	return &UserRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return translateError(r.writerDB.WithContext(ctx).Create(user).Error, "failed to create user")
}

// GetByEmail reads from the writer so a login right after registration
// does not miss a row still replicating.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.writerDB.WithContext(ctx).First(&user, "email = ?", domain.NormalizeEmail(email)).Error
	if err != nil {
		return nil, translateError(err, "failed to get user by email")
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.writerDB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to get user")
	}
	return &user, nil
}

func (r *UserRepository) ListByTenant(ctx context.Context, scope tenancy.Scope) ([]domain.User, error) {
	db, err := scoped(ctx, r.readerDB, scope)
	if err != nil {
		return nil, err
	}

	users := []domain.User{}
	if err := db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, translateError(err, "failed to list users")
	}
	return users, nil
}

// CountByTenant reads from the writer so a count taken inside a transaction
// sees the transaction's own inserts.
func (r *UserRepository) CountByTenant(ctx context.Context, scope tenancy.Scope) (int64, error) {
	db, err := scoped(ctx, r.writerDB, scope)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&domain.User{}).Count(&count).Error; err != nil {
		return 0, translateError(err, "failed to count users")
	}
	return count, nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	result := r.writerDB.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"password_hash": hash, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return translateError(result.Error, "failed to update password")
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) DeleteUnattached(ctx context.Context) error {
	err := r.writerDB.WithContext(ctx).Where("tenant_id IS NULL").Delete(&domain.User{}).Error
	return translateError(err, "failed to delete unattached users")
}
