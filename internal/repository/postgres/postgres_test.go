package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
	"github.com/kingrain94/clinic-access-core/internal/testutil"
)

type PostgresRepositoryTestSuite struct {
	suite.Suite
	db     *gorm.DB
	repo   repository.PostgresRepository
	ctx    context.Context
	scopeA tenancy.Scope
	scopeB tenancy.Scope
}

func (s *PostgresRepositoryTestSuite) SetupTest() {
	conns := testutil.NewTestConnections(s.T())
	s.db = conns.Writer
	s.repo = NewPostgresRepository(conns)
	s.ctx = context.Background()

	a := testutil.SeedTenant(s.T(), s.db, "Clinic A")
	b := testutil.SeedTenant(s.T(), s.db, "Clinic B")

	var err error
	s.scopeA, err = tenancy.ForTenant(a.ID)
	s.Require().NoError(err)
	s.scopeB, err = tenancy.ForTenant(b.ID)
	s.Require().NoError(err)
}

func (s *PostgresRepositoryTestSuite) TestPatient_CrossTenantAccessIsNotFound() {
	// Arrange
	patient := &domain.Patient{FirstName: "Ana", LastName: "Lee", TenantID: s.scopeB.TenantID()}
	s.Require().NoError(s.repo.Patient().Create(s.ctx, s.scopeA, patient))

	// Act
	_, errGet := s.repo.Patient().GetByID(s.ctx, s.scopeB, patient.ID)
	errDelete := s.repo.Patient().Delete(s.ctx, s.scopeB, patient.ID)
	listB, errList := s.repo.Patient().List(s.ctx, s.scopeB, 10, 0)

	// Assert
	s.Equal(s.scopeA.TenantID(), patient.TenantID, "tenant comes from the scope, not the caller")
	s.ErrorIs(errGet, apperror.ErrNotFound)
	s.ErrorIs(errDelete, apperror.ErrNotFound)
	s.NoError(errList)
	s.Empty(listB)

	found, err := s.repo.Patient().GetByID(s.ctx, s.scopeA, patient.ID)
	s.Require().NoError(err)
	s.Equal("Ana", found.FirstName)
}

func (s *PostgresRepositoryTestSuite) TestPatient_ZeroScopeRefused() {
	err := s.repo.Patient().Create(s.ctx, tenancy.Scope{}, &domain.Patient{FirstName: "X", LastName: "Y"})
	s.ErrorIs(err, tenancy.ErrUnscoped)

	_, err = s.repo.Patient().List(s.ctx, tenancy.Scope{}, 10, 0)
	s.ErrorIs(err, tenancy.ErrUnscoped)
}

func (s *PostgresRepositoryTestSuite) TestAPIKey_UpdateAndDeleteAreScoped() {
	key := &domain.APIKey{Provider: "openai", Name: "prod", KeySealed: "sealed", KeyPrefix: "sk-1", CreatedBy: "u1"}
	s.Require().NoError(s.repo.APIKey().Create(s.ctx, s.scopeA, key))

	key.Name = "hijacked"
	s.ErrorIs(s.repo.APIKey().Update(s.ctx, s.scopeB, key), apperror.ErrNotFound)
	s.ErrorIs(s.repo.APIKey().Delete(s.ctx, s.scopeB, key.ID), apperror.ErrNotFound)

	stored, err := s.repo.APIKey().GetByID(s.ctx, s.scopeA, key.ID)
	s.Require().NoError(err)
	s.Equal("prod", stored.Name)

	key.Name = "renamed"
	s.Require().NoError(s.repo.APIKey().Update(s.ctx, s.scopeA, key))
	s.Require().NoError(s.repo.APIKey().Delete(s.ctx, s.scopeA, key.ID))

	keys, err := s.repo.APIKey().List(s.ctx, s.scopeA)
	s.Require().NoError(err)
	s.Empty(keys)
}

func (s *PostgresRepositoryTestSuite) TestUser_EmailIsCaseInsensitive() {
	user := &domain.User{Email: "  Dr.Who@Clinic.TEST ", Name: "Who", Role: domain.RoleDentist, PasswordHash: "h"}
	user.SetTenantID(s.scopeA.TenantID())
	s.Require().NoError(s.repo.User().Create(s.ctx, user))

	found, err := s.repo.User().GetByEmail(s.ctx, "dr.who@clinic.test")
	s.Require().NoError(err)
	s.Equal(user.ID, found.ID)
	s.Equal("dr.who@clinic.test", found.Email)

	dup := &domain.User{Email: "DR.WHO@clinic.test", Name: "Other", Role: domain.RoleAdmin, PasswordHash: "h"}
	s.ErrorIs(s.repo.User().Create(s.ctx, dup), apperror.ErrConflict)
}

func (s *PostgresRepositoryTestSuite) TestUser_ListByTenant() {
	for _, email := range []string{"a@a.test", "b@a.test"} {
		u := &domain.User{Email: email, Name: email, Role: domain.RoleReceptionist, PasswordHash: "h"}
		u.SetTenantID(s.scopeA.TenantID())
		s.Require().NoError(s.repo.User().Create(s.ctx, u))
	}

	usersA, err := s.repo.User().ListByTenant(s.ctx, s.scopeA)
	s.Require().NoError(err)
	usersB, err := s.repo.User().ListByTenant(s.ctx, s.scopeB)
	s.Require().NoError(err)

	s.Len(usersA, 2)
	s.Empty(usersB)
}

func (s *PostgresRepositoryTestSuite) TestAuditLog_ListNewestFirst() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := &domain.AuditLog{
			TenantID:  s.scopeA.TenantID(),
			UserID:    "u1",
			Action:    domain.ActionLoginSucceeded,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		s.Require().NoError(s.repo.AuditLog().Create(s.ctx, entry))
	}
	other := &domain.AuditLog{TenantID: s.scopeB.TenantID(), UserID: "u2", Action: domain.ActionLoginFailed, Timestamp: base.Add(time.Hour)}
	s.Require().NoError(s.repo.AuditLog().Create(s.ctx, other))

	all, err := s.repo.AuditLog().List(s.ctx, domain.AuditLogFilter{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("u2", all[0].UserID)

	forA, err := s.repo.AuditLog().ListForTenant(s.ctx, s.scopeA, domain.AuditLogFilter{})
	s.Require().NoError(err)
	s.Require().Len(forA, 3)
	s.True(forA[0].Timestamp.After(forA[1].Timestamp))
	s.True(forA[1].Timestamp.After(forA[2].Timestamp))
}

func (s *PostgresRepositoryTestSuite) TestTransaction_RollsBack() {
	errBoom := errors.New("boom")

	err := s.repo.Transaction(s.ctx, func(tx repository.PostgresRepository) error {
		if _, err := tx.Tenant().Create(s.ctx, &domain.Tenant{Name: "Ghost", Slug: "ghost", IsActive: true}); err != nil {
			return err
		}
		return errBoom
	})

	s.ErrorIs(err, errBoom)
	exists, err := s.repo.Tenant().SlugExists(s.ctx, "ghost")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *PostgresRepositoryTestSuite) TestUser_DeleteUnattached() {
	bootstrap := &domain.User{Email: "admin@bootstrap.local", Name: "Admin", Role: domain.RoleAdmin, PasswordHash: "x"}
	member := &domain.User{Email: "member@clinic.test", Name: "Member", Role: domain.RoleDentist, PasswordHash: "x"}
	member.SetTenantID(s.scopeA.TenantID())
	s.Require().NoError(s.repo.User().Create(s.ctx, bootstrap))
	s.Require().NoError(s.repo.User().Create(s.ctx, member))

	s.Require().NoError(s.repo.User().DeleteUnattached(s.ctx))

	_, err := s.repo.User().GetByID(s.ctx, bootstrap.ID)
	s.ErrorIs(err, apperror.ErrNotFound)
	_, err = s.repo.User().GetByID(s.ctx, member.ID)
	s.NoError(err)
}

func (s *PostgresRepositoryTestSuite) TestTenant_Placeholder() {
	_, err := s.repo.Tenant().GetPlaceholder(s.ctx)
	s.ErrorIs(err, repository.ErrNotFound)

	placeholder := &domain.Tenant{Name: "Temporary Admin", Slug: domain.PlaceholderTenantSlug, IsActive: true, IsPlaceholder: true}
	_, err = s.repo.Tenant().Create(s.ctx, placeholder)
	s.Require().NoError(err)

	found, err := s.repo.Tenant().GetPlaceholder(s.ctx)
	s.Require().NoError(err)
	s.Equal(placeholder.ID, found.ID)

	registered, err := s.repo.Tenant().CountRegistered(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(2), registered, "seeded clinics only")

	s.Require().NoError(s.repo.Tenant().Delete(s.ctx, placeholder.ID))
	_, err = s.repo.Tenant().GetByID(s.ctx, placeholder.ID)
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *PostgresRepositoryTestSuite) TestTimestamps_ReadBackAsTime() {
	// Arrange
	before := time.Now().UTC().Add(-time.Second)
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	tenant, err := s.repo.Tenant().Create(s.ctx, &domain.Tenant{Name: "Clock Dental", Slug: "clock-dental", IsActive: true})
	s.Require().NoError(err)
	scope, err := tenancy.ForTenant(tenant.ID)
	s.Require().NoError(err)
	sub := &domain.Subscription{
		PlanType: domain.PlanFree, Status: domain.SubscriptionActive,
		MaxPatients: 2, MaxUsers: 2, AIQueriesLimit: 2,
		CurrentPeriodStart: start, CurrentPeriodEnd: start.AddDate(0, 1, 0),
	}
	s.Require().NoError(s.repo.Subscription().Create(s.ctx, scope, sub))
	s.Require().NoError(s.repo.AuditLog().Create(s.ctx, &domain.AuditLog{
		TenantID: tenant.ID, UserID: "u", Action: domain.ActionTenantRegistered, Resource: "tenant", Timestamp: start,
	}))

	// Act
	var storedTenant domain.Tenant
	errTenant := s.db.First(&storedTenant, "id = ?", tenant.ID).Error
	var storedSub domain.Subscription
	errSub := s.db.First(&storedSub, "id = ?", sub.ID).Error
	logs, errLogs := s.repo.AuditLog().ListForTenant(s.ctx, scope, domain.AuditLogFilter{Limit: 10})

	// Assert
	s.Require().NoError(errTenant)
	s.Require().NoError(errSub)
	s.Require().NoError(errLogs)
	s.True(storedTenant.CreatedAt.After(before), "created_at is set on insert")
	s.False(storedTenant.UpdatedAt.IsZero())
	s.True(storedSub.CurrentPeriodStart.Equal(start))
	s.True(storedSub.CurrentPeriodEnd.Equal(start.AddDate(0, 1, 0)))
	s.Require().Len(logs, 1)
	s.True(logs[0].Timestamp.Equal(start))
}

func (s *PostgresRepositoryTestSuite) TestSubscription_LockActive() {
	start := time.Now().UTC().Add(-time.Hour)
	sub := &domain.Subscription{
		PlanType: domain.PlanFree, Status: domain.SubscriptionActive,
		MaxPatients: 2, MaxUsers: 2, AIQueriesLimit: 2,
		CurrentPeriodStart: start, CurrentPeriodEnd: start.AddDate(0, 1, 0),
	}
	s.Require().NoError(s.repo.Subscription().Create(s.ctx, s.scopeA, sub))

	err := s.repo.Transaction(s.ctx, func(tx repository.PostgresRepository) error {
		locked, err := tx.Subscription().LockActive(s.ctx, s.scopeA)
		s.Require().NoError(err)
		s.Require().NotNil(locked)
		s.Equal(sub.ID, locked.ID)

		none, err := tx.Subscription().LockActive(s.ctx, s.scopeB)
		s.Nil(none, "another tenant's subscription is never returned")
		return err
	})
	s.NoError(err)

	_, err = s.repo.Subscription().LockActive(s.ctx, tenancy.Scope{})
	s.ErrorIs(err, tenancy.ErrUnscoped)
}

func (s *PostgresRepositoryTestSuite) TestCounts_AreScoped() {
	s.Require().NoError(s.repo.Patient().Create(s.ctx, s.scopeA, &domain.Patient{FirstName: "Ana", LastName: "Lee"}))
	user := &domain.User{Email: "sam@a.test", Name: "Sam", Role: domain.RoleDentist, PasswordHash: "x"}
	user.SetTenantID(s.scopeA.TenantID())
	s.Require().NoError(s.repo.User().Create(s.ctx, user))

	patientsA, err := s.repo.Patient().Count(s.ctx, s.scopeA)
	s.Require().NoError(err)
	patientsB, err := s.repo.Patient().Count(s.ctx, s.scopeB)
	s.Require().NoError(err)
	usersA, err := s.repo.User().CountByTenant(s.ctx, s.scopeA)
	s.Require().NoError(err)
	usersB, err := s.repo.User().CountByTenant(s.ctx, s.scopeB)
	s.Require().NoError(err)

	s.Equal(int64(1), patientsA)
	s.Zero(patientsB)
	s.Equal(int64(1), usersA)
	s.Zero(usersB)
}

func TestPostgresRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(PostgresRepositoryTestSuite))
}
