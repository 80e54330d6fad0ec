package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/auth/password"
	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/quota"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/repository/postgres"
	"github.com/kingrain94/clinic-access-core/internal/testutil"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

var fastHashParams = password.Params{Memory: 1024, Time: 1, Threads: 1}

// fixture wires the services to an in-memory database.
type fixture struct {
	db      *gorm.DB
	repo    repository.PostgresRepository
	audit   *AuditTrail
	tracker *quota.Tracker
	codec   *auth.TokenCodec
	plans   *config.PlanConfig
	log     *logger.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, testutil.NewTestConnections(t))
}

// newPooledFixture runs on a file database with a connection pool, for
// tests that race requests against each other.
func newPooledFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, config.NewSingleConnection(testutil.NewFileTestDB(t, 16)))
}

func newFixtureOn(t *testing.T, conns *config.DatabaseConnections) *fixture {
	t.Helper()

	repo := postgres.NewPostgresRepository(conns)
	log := logger.NewNop()

	codec, err := auth.NewTokenCodec("service-test-secret", time.Hour)
	require.NoError(t, err)

	return &fixture{
		db:      conns.Writer,
		repo:    repo,
		audit:   NewAuditTrail(repo.AuditLog(), nil, nil, log, nil, WithOperators(repo.User())),
		tracker: quota.NewTracker(conns.Writer, log),
		codec:   codec,
		plans: &config.PlanConfig{
			Plans: map[domain.PlanType]config.PlanLimits{
				domain.PlanFree:       {MaxPatients: 2, MaxUsers: 2, AIQueriesLimit: 2},
				domain.PlanEnterprise: {MaxPatients: domain.UnlimitedQuota, MaxUsers: domain.UnlimitedQuota, AIQueriesLimit: domain.UnlimitedQuota},
			},
			DefaultPlan: domain.PlanFree,
			Period:      30 * 24 * time.Hour,
		},
		log: log,
	}
}

func (f *fixture) accounts(t *testing.T, opts ...AccountOption) *AccountService {
	t.Helper()

	opts = append([]AccountOption{WithHashParams(fastHashParams)}, opts...)
	svc, err := NewAccountService(f.repo, f.codec, f.tracker, f.audit, f.plans, f.log, opts...)
	require.NoError(t, err)
	return svc
}

// register creates a clinic and returns its admin's claims.
func (f *fixture) register(t *testing.T, clinic, email string) *RegisterResult {
	t.Helper()

	result, err := f.accounts(t).Register(context.Background(), dto.RegisterRequest{
		ClinicName:     clinic,
		Name:           "Admin of " + clinic,
		Email:          email,
		Password:       "correct-horse-battery",
		RecoverySecret: "blue-river-42",
	})
	require.NoError(t, err)
	return result
}

func (f *fixture) auditActions(t *testing.T, tenantID string) []domain.AuditAction {
	t.Helper()

	var logs []domain.AuditLog
	require.NoError(t, f.db.Where("tenant_id = ?", tenantID).Find(&logs).Error)

	actions := make([]domain.AuditAction, len(logs))
	for i, log := range logs {
		actions[i] = log.Action
	}
	return actions
}

func (f *fixture) auditCount(t *testing.T, action domain.AuditAction) int64 {
	t.Helper()

	var count int64
	require.NoError(t, f.db.Model(&domain.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}
