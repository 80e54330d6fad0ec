package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/repository"
)

type postgresRepository struct {
	writerDB         *gorm.DB
	readerDB         *gorm.DB
	auditLogRepo     repository.AuditLogRepository
	tenantRepo       repository.TenantRepository
	userRepo         repository.UserRepository
	patientRepo      repository.PatientRepository
	apiKeyRepo       repository.APIKeyRepository
	subscriptionRepo repository.SubscriptionRepository
}

func NewPostgresRepository(dbConnections *config.DatabaseConnections) repository.PostgresRepository {
	return newPostgresRepository(dbConnections.Writer, dbConnections.Reader)
}

func newPostgresRepository(writerDB, readerDB *gorm.DB) *postgresRepository {
	return &postgresRepository{
		writerDB:         writerDB,
		readerDB:         readerDB,
		auditLogRepo:     NewAuditLogRepository(writerDB, readerDB),
		tenantRepo:       NewTenantRepository(writerDB, readerDB),
		userRepo:         NewUserRepository(writerDB, readerDB),
		patientRepo:      NewPatientRepository(writerDB, readerDB),
		apiKeyRepo:       NewAPIKeyRepository(writerDB, readerDB),
		subscriptionRepo: NewSubscriptionRepository(writerDB),
	}
}

func (r *postgresRepository) AuditLog() repository.AuditLogRepository {
	return r.auditLogRepo
}

func (r *postgresRepository) Tenant() repository.TenantRepository {
	return r.tenantRepo
}

func (r *postgresRepository) User() repository.UserRepository {
	return r.userRepo
}

func (r *postgresRepository) Patient() repository.PatientRepository {
	return r.patientRepo
}

func (r *postgresRepository) APIKey() repository.APIKeyRepository {
	return r.apiKeyRepo
}

func (r *postgresRepository) Subscription() repository.SubscriptionRepository {
	return r.subscriptionRepo
}

// Transaction runs fn with every repository bound to one writer transaction.
// Reads inside the transaction also go to the writer.
func (r *postgresRepository) Transaction(ctx context.Context, fn func(tx repository.PostgresRepository) error) error {
	return r.writerDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newPostgresRepository(tx, tx))
	})
}
