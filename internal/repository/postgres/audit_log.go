package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
)

type AuditLogRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewAuditLogRepository(writerDB, readerDB *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

// Create appends an entry. There is no update or delete: the trail is append-only.
func (r *AuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return translateError(r.writerDB.WithContext(ctx).Create(log).Error, "failed to create audit log")
}

func (r *AuditLogRepository) List(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, error) {
	db := r.readerDB.WithContext(ctx)
	if filter.TenantID != "" {
		db = db.Where("tenant_id = ?", filter.TenantID)
	}
	return r.list(db, filter)
}

func (r *AuditLogRepository) ListForTenant(ctx context.Context, scope tenancy.Scope, filter domain.AuditLogFilter) ([]domain.AuditLog, error) {
	db, err := scoped(ctx, r.readerDB, scope)
	if err != nil {
		return nil, err
	}
	return r.list(db, filter)
}

func (r *AuditLogRepository) list(db *gorm.DB, filter domain.AuditLogFilter) ([]domain.AuditLog, error) {
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		db = db.Where("action = ?", filter.Action)
	}
	if filter.Resource != "" {
		db = db.Where("resource = ?", filter.Resource)
	}
	if !filter.StartTime.IsZero() {
		db = db.Where("timestamp >= ?", filter.StartTime.UTC())
	}
	if !filter.EndTime.IsZero() {
		db = db.Where("timestamp <= ?", filter.EndTime.UTC())
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	logs := []domain.AuditLog{}
	if err := db.Order("timestamp DESC").Order("id DESC").Find(&logs).Error; err != nil {
		return nil, translateError(err, "failed to list audit logs")
	}
	return logs, nil
}
