package repository

import (
	"context"
	"time"

	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
)

var (
	ErrNotFound  = apperror.New(apperror.KindNotFound, "record not found")
	ErrDuplicate = apperror.New(apperror.KindConflict, "record already exists")
)

//go:generate mockery --name AuditLogRepository --output ../mocks
type AuditLogRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	// List reads across all tenants; filter.TenantID narrows it when set.
	List(ctx context.Context, filter domain.AuditLogFilter) ([]domain.AuditLog, error)
	ListForTenant(ctx context.Context, scope tenancy.Scope, filter domain.AuditLogFilter) ([]domain.AuditLog, error)
}

//go:generate mockery --name OpenSearchRepository --output ../mocks
type OpenSearchRepository interface {
	Index(ctx context.Context, log *domain.AuditLog) error
	BulkIndex(ctx context.Context, logs []domain.AuditLog) error
	Search(ctx context.Context, scope tenancy.Scope, filter domain.AuditLogFilter) ([]domain.AuditLog, error)
	CreateIndex(ctx context.Context, tenantID string, t time.Time) error
}

//go:generate mockery --name TenantRepository --output ../mocks
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) (*domain.Tenant, error)
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	GetPlaceholder(ctx context.Context) (*domain.Tenant, error)
	// CountRegistered counts tenants other than the bootstrap placeholder.
	CountRegistered(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
}

//go:generate mockery --name UserRepository --output ../mocks
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// GetByEmail and GetByID resolve identities, not tenant data: login and
	// self-service run before or regardless of a tenant scope.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListByTenant(ctx context.Context, scope tenancy.Scope) ([]domain.User, error)
	CountByTenant(ctx context.Context, scope tenancy.Scope) (int64, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	// DeleteUnattached removes identities that belong to no tenant, i.e. the
	// bootstrap admin.
	DeleteUnattached(ctx context.Context) error
}

//go:generate mockery --name PatientRepository --output ../mocks
type PatientRepository interface {
	Create(ctx context.Context, scope tenancy.Scope, patient *domain.Patient) error
	GetByID(ctx context.Context, scope tenancy.Scope, id string) (*domain.Patient, error)
	List(ctx context.Context, scope tenancy.Scope, limit, offset int) ([]domain.Patient, error)
	Count(ctx context.Context, scope tenancy.Scope) (int64, error)
	Delete(ctx context.Context, scope tenancy.Scope, id string) error
}

//go:generate mockery --name APIKeyRepository --output ../mocks
type APIKeyRepository interface {
	Create(ctx context.Context, scope tenancy.Scope, key *domain.APIKey) error
	GetByID(ctx context.Context, scope tenancy.Scope, id string) (*domain.APIKey, error)
	List(ctx context.Context, scope tenancy.Scope) ([]domain.APIKey, error)
	Update(ctx context.Context, scope tenancy.Scope, key *domain.APIKey) error
	Delete(ctx context.Context, scope tenancy.Scope, id string) error
}

//go:generate mockery --name SubscriptionRepository --output ../mocks
type SubscriptionRepository interface {
	Create(ctx context.Context, scope tenancy.Scope, sub *domain.Subscription) error
	// LockActive write-locks the tenant's active subscription rows until the
	// surrounding transaction ends and returns the newest one, or nil when
	// there is none.
	LockActive(ctx context.Context, scope tenancy.Scope) (*domain.Subscription, error)
}

//go:generate mockery --name PostgresRepository --output ../mocks
type PostgresRepository interface {
	AuditLog() AuditLogRepository
	Tenant() TenantRepository
	User() UserRepository
	Patient() PatientRepository
	APIKey() APIKeyRepository
	Subscription() SubscriptionRepository
	// Transaction runs fn against repositories bound to one transaction.
	Transaction(ctx context.Context, fn func(tx PostgresRepository) error) error
}

//go:generate mockery --name Repository --output ../mocks
type Repository interface {
	PostgresRepository
	OpenSearch() OpenSearchRepository
}
