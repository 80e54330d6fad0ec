package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/domain"
)

type TenantRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewTenantRepository(writerDB, readerDB *gorm.DB) *TenantRepository {
	return &TenantRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error) {
	if err := r.writerDB.WithContext(ctx).Create(tenant).Error; err != nil {
		return nil, translateError(err, "failed to create tenant")
	}
	return tenant, nil
}

func (r *TenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := r.readerDB.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "failed to get tenant")
	}
	return &tenant, nil
}

func (r *TenantRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.readerDB.WithContext(ctx).Model(&domain.Tenant{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, translateError(err, "failed to check tenant slug")
	}
	return count > 0, nil
}

func (r *TenantRepository) GetPlaceholder(ctx context.Context) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := r.readerDB.WithContext(ctx).First(&tenant, "is_placeholder = ?", true).Error; err != nil {
		return nil, translateError(err, "failed to get placeholder tenant")
	}
	return &tenant, nil
}

func (r *TenantRepository) CountRegistered(ctx context.Context) (int64, error) {
	var count int64
	err := r.writerDB.WithContext(ctx).Model(&domain.Tenant{}).Where("is_placeholder = ?", false).Count(&count).Error
	if err != nil {
		return 0, translateError(err, "failed to count tenants")
	}
	return count, nil
}

func (r *TenantRepository) Delete(ctx context.Context, id string) error {
	return translateError(r.writerDB.WithContext(ctx).Delete(&domain.Tenant{}, "id = ?", id).Error, "failed to delete tenant")
}
