package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/metrics"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
	"github.com/kingrain94/clinic-access-core/internal/utils"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

const (
	DefaultAuditQueryLimit = 50
	MaxAuditQueryLimit     = 500

	auditWriteTimeout = 5 * time.Second
)

//go:generate mockery --name SQSService --output ../mocks
type SQSService interface {
	SendIndexMessage(ctx context.Context, log *domain.AuditLog) error
	SendArchiveMessage(ctx context.Context, tenantID, requestedBy string, start, end time.Time) error
}

//go:generate mockery --name OperatorLookup --output ../mocks
type OperatorLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// ErrNotPlatformAdmin refuses cross-tenant reads to anyone but a live
// bootstrap admin.
var ErrNotPlatformAdmin = apperror.New(apperror.KindForbidden, "cross-tenant audit access requires the platform admin")

// AuditEntry is one action to record. IPAddress and UserAgent are taken
// from the request context when left empty.
type AuditEntry struct {
	TenantID  string
	UserID    string
	Action    domain.AuditAction
	Resource  string
	IPAddress string
	UserAgent string
	Metadata  map[string]any
}

type AuditTrail struct {
	repo    repository.AuditLogRepository
	search  repository.OpenSearchRepository
	sqsSvc  SQSService
	logger  *logger.Logger
	metrics *metrics.Metrics
	users   OperatorLookup
	now     func() time.Time
}

type AuditOption func(*AuditTrail)

// WithOperators lets QueryAll confirm its caller against the user store.
// Without it every cross-tenant read is refused.
func WithOperators(users OperatorLookup) AuditOption {
	return func(a *AuditTrail) {
		a.users = users
	}
}

// NewAuditTrail wires the trail to its store. search and sqsSvc are optional.
func NewAuditTrail(
	repo repository.AuditLogRepository,
	search repository.OpenSearchRepository,
	sqsSvc SQSService,
	logger *logger.Logger,
	metrics *metrics.Metrics,
	opts ...AuditOption,
) *AuditTrail {
	a := &AuditTrail{
		repo:    repo,
		search:  search,
		sqsSvc:  sqsSvc,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record appends entry to the trail. It is best-effort: a failed write is
// logged and counted, never returned, so auditing can not break the action
// being audited. The write is detached from ctx cancellation so an entry for
// a request whose client went away is still stored.
func (a *AuditTrail) Record(ctx context.Context, entry AuditEntry) {
	log := a.toAuditLog(ctx, entry)

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()

	err := a.repo.Create(writeCtx, log)
	a.metrics.AuditRecord(string(entry.Action), err)
	if err != nil {
		a.logger.Error("Failed to record audit entry", err,
			zap.String("action", string(entry.Action)),
			zap.String("tenant_id", entry.TenantID),
			zap.String("user_id", entry.UserID))
		return
	}

	if a.sqsSvc == nil {
		return
	}
	if err := a.sqsSvc.SendIndexMessage(writeCtx, log); err != nil {
		a.logger.Warn("Failed to send index message to SQS",
			zap.String("audit_id", log.ID), zap.Error(err))
	}
}

// Query returns the newest entries written by userID.
func (a *AuditTrail) Query(ctx context.Context, userID string, limit int) ([]domain.AuditLog, error) {
	return a.repo.List(ctx, domain.AuditLogFilter{UserID: userID, Limit: clampLimit(limit)})
}

// QueryAll returns the newest entries across every tenant. operatorID must
// still name an active ADMIN that belongs to no clinic. A valid credential
// is not enough: the bootstrap admin is deleted when the first clinic
// registers, but credentials issued to it remain valid until they expire.
func (a *AuditTrail) QueryAll(ctx context.Context, operatorID string, limit int) ([]domain.AuditLog, error) {
	if err := a.checkOperator(ctx, operatorID); err != nil {
		return nil, err
	}
	return a.repo.List(ctx, domain.AuditLogFilter{Limit: clampLimit(limit)})
}

func (a *AuditTrail) checkOperator(ctx context.Context, userID string) error {
	if a.users == nil || userID == "" {
		return ErrNotPlatformAdmin
	}

	user, err := a.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		a.logger.Warn("Cross-tenant audit read by unknown identity", zap.String("user_id", userID))
		return ErrNotPlatformAdmin
	}
	if err != nil {
		return err
	}
	if user.TenantID != nil || user.Role != domain.RoleAdmin || !user.Active {
		return ErrNotPlatformAdmin
	}
	return nil
}

// QueryTenant returns the newest entries of the scoped tenant.
func (a *AuditTrail) QueryTenant(ctx context.Context, scope tenancy.Scope, limit int) ([]domain.AuditLog, error) {
	return a.repo.ListForTenant(ctx, scope, domain.AuditLogFilter{Limit: clampLimit(limit)})
}

// Search filters the scoped tenant's entries. OpenSearch serves it when
// configured; the database is the fallback.
func (a *AuditTrail) Search(ctx context.Context, scope tenancy.Scope, filter domain.AuditLogFilter) ([]domain.AuditLog, error) {
	filter.Limit = clampLimit(filter.Limit)
	filter.TenantID = ""

	if a.search != nil && filter.HasCriteria() {
		logs, err := a.search.Search(ctx, scope, filter)
		if err == nil {
			return logs, nil
		}
		a.logger.Warn("OpenSearch query failed, falling back to database", zap.Error(err))
	}
	return a.repo.ListForTenant(ctx, scope, filter)
}

// ScheduleArchive queues an export of the scoped tenant's entries in
// [start, end] to object storage. Entries are not removed.
func (a *AuditTrail) ScheduleArchive(ctx context.Context, scope tenancy.Scope, requestedBy string, start, end time.Time) error {
	if scope.IsZero() {
		return tenancy.ErrUnscoped
	}
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return apperror.New(apperror.KindInvalidInput, "start_time must be before end_time")
	}
	if a.sqsSvc == nil {
		return apperror.New(apperror.KindPersistenceUnavailable, "archive queue is not configured")
	}

	if err := a.sqsSvc.SendArchiveMessage(ctx, scope.TenantID(), requestedBy, start.UTC(), end.UTC()); err != nil {
		return apperror.Wrap(apperror.KindPersistenceUnavailable, "failed to schedule archive", err)
	}

	a.Record(ctx, AuditEntry{
		TenantID: scope.TenantID(),
		UserID:   requestedBy,
		Action:   domain.ActionAuditArchived,
		Resource: "audit_log",
		Metadata: map[string]any{
			"start_time": start.UTC().Format(time.RFC3339),
			"end_time":   end.UTC().Format(time.RFC3339),
		},
	})
	return nil
}

func (a *AuditTrail) toAuditLog(ctx context.Context, entry AuditEntry) *domain.AuditLog {
	log := &domain.AuditLog{
		TenantID:  entry.TenantID,
		UserID:    entry.UserID,
		Action:    entry.Action,
		Resource:  entry.Resource,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		Timestamp: a.now().UTC(),
	}
	if log.IPAddress == "" {
		log.IPAddress = utils.GetStringFromContext(ctx, utils.ClientIPKey)
	}
	if log.UserAgent == "" {
		log.UserAgent = utils.GetStringFromContext(ctx, utils.UserAgentKey)
	}

	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			a.logger.Warn("Dropping unencodable audit metadata",
				zap.String("action", string(entry.Action)), zap.Error(err))
		} else {
			log.Metadata = raw
		}
	}
	return log
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultAuditQueryLimit
	}
	return min(limit, MaxAuditQueryLimit)
}
