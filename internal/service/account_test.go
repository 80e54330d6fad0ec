package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/mocks"
)

type AccountServiceTestSuite struct {
	suite.Suite
	f       *fixture
	ctx     context.Context
	service *AccountService
}

func (s *AccountServiceTestSuite) SetupTest() {
	s.f = newFixture(s.T())
	s.ctx = context.Background()
	s.service = s.f.accounts(s.T())
}

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (s *AccountServiceTestSuite) TestRegister_CreatesClinicAdminAndSubscription() {
	// Act
	result := s.f.register(s.T(), "Smile Dental", "Ana@Smile.test")

	// Assert
	s.Equal("smile-dental", result.Tenant.Slug)
	s.Equal(domain.RoleAdmin, result.User.Role)
	s.Equal("ana@smile.test", result.User.Email)
	s.Equal(result.Tenant.ID, result.User.TenantIDValue())

	claims, err := s.f.codec.Verify(result.Token)
	s.Require().NoError(err)
	s.Equal(result.Tenant.ID, claims.TenantID)
	s.Equal(domain.RoleAdmin, claims.Role)

	var sub domain.Subscription
	s.Require().NoError(s.f.db.Where("tenant_id = ?", result.Tenant.ID).First(&sub).Error)
	s.Equal(domain.PlanFree, sub.PlanType)
	s.Equal(domain.SubscriptionActive, sub.Status)
	s.Equal(2, sub.AIQueriesLimit)

	s.ElementsMatch(
		[]domain.AuditAction{domain.ActionTenantRegistered, domain.ActionUserCreated},
		s.f.auditActions(s.T(), result.Tenant.ID))
}

func (s *AccountServiceTestSuite) TestRegister_DuplicateEmailRollsBack() {
	s.f.register(s.T(), "Smile Dental", "ana@smile.test")

	_, err := s.service.Register(s.ctx, dto.RegisterRequest{
		ClinicName: "Other Clinic",
		Name:       "Ana",
		Email:      "ANA@smile.test",
		Password:   "correct-horse-battery",
	})

	s.ErrorIs(err, apperror.ErrConflict)
	var tenants int64
	s.Require().NoError(s.f.db.Model(&domain.Tenant{}).Count(&tenants).Error)
	s.Equal(int64(1), tenants, "the second clinic must not survive the failed registration")
}

func (s *AccountServiceTestSuite) TestRegister_SlugIsMadeUnique() {
	first := s.f.register(s.T(), "Smile Dental", "a@smile.test")
	second := s.f.register(s.T(), "Smile Dental", "b@smile.test")

	s.Equal("smile-dental", first.Tenant.Slug)
	s.Equal("smile-dental-2", second.Tenant.Slug)
}

func (s *AccountServiceTestSuite) TestRegister_Validation() {
	_, err := s.service.Register(s.ctx, dto.RegisterRequest{
		ClinicName: "Smile", Name: "Ana", Email: "ana@smile.test", Password: "correct-horse-battery", Plan: "GOLD",
	})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	_, err = s.service.Register(s.ctx, dto.RegisterRequest{
		ClinicName: "Smile", Name: "Ana", Email: "ana@smile.test", Password: "short",
	})
	s.ErrorIs(err, apperror.ErrInvalidInput)
}

func (s *AccountServiceTestSuite) TestBootstrapAdmin_ReplacedByFirstRegistration() {
	// Arrange
	svc := s.f.accounts(s.T(), WithBootstrap(config.BootstrapConfig{
		AdminEmail:    "admin@bootstrap.local",
		AdminPassword: "bootstrap-password",
	}))
	s.Require().NoError(svc.EnsureBootstrapAdmin(s.ctx))
	s.Require().NoError(svc.EnsureBootstrapAdmin(s.ctx), "second call is a no-op")

	placeholder, err := s.f.repo.Tenant().GetPlaceholder(s.ctx)
	s.Require().NoError(err)
	s.Equal(domain.PlaceholderTenantSlug, placeholder.Slug)

	session, err := svc.Login(s.ctx, "admin@bootstrap.local", "bootstrap-password")
	s.Require().NoError(err)
	s.Empty(session.Claims.TenantID, "the bootstrap admin belongs to no clinic")

	// Act
	s.f.register(s.T(), "Smile Dental", "ana@smile.test")

	// Assert
	_, err = s.f.repo.Tenant().GetPlaceholder(s.ctx)
	s.ErrorIs(err, apperror.ErrNotFound)
	_, err = s.f.repo.User().GetByEmail(s.ctx, "admin@bootstrap.local")
	s.ErrorIs(err, apperror.ErrNotFound)

	s.Require().NoError(svc.EnsureBootstrapAdmin(s.ctx))
	_, err = s.f.repo.Tenant().GetPlaceholder(s.ctx)
	s.ErrorIs(err, apperror.ErrNotFound, "no placeholder once a clinic exists")
}

func (s *AccountServiceTestSuite) TestBootstrapAdmin_CredentialLosesPlatformReadsOnceReplaced() {
	// Arrange
	svc := s.f.accounts(s.T(), WithBootstrap(config.BootstrapConfig{
		AdminEmail:    "admin@bootstrap.local",
		AdminPassword: "bootstrap-password",
	}))
	s.Require().NoError(svc.EnsureBootstrapAdmin(s.ctx))
	session, err := svc.Login(s.ctx, "admin@bootstrap.local", "bootstrap-password")
	s.Require().NoError(err)

	_, err = s.f.audit.QueryAll(s.ctx, session.Claims.UserID, 0)
	s.Require().NoError(err, "the live bootstrap admin reads across tenants")

	// Act
	reg := s.f.register(s.T(), "Smile Dental", "ana@smile.test")
	_, err = s.f.codec.Verify(session.Token)
	s.Require().NoError(err, "the old credential has not expired")
	logs, err := s.f.audit.QueryAll(s.ctx, session.Claims.UserID, 0)

	// Assert
	s.ErrorIs(err, apperror.ErrForbidden)
	s.Nil(logs)
	_, err = s.f.audit.QueryAll(s.ctx, reg.User.ID, 0)
	s.ErrorIs(err, apperror.ErrForbidden, "a clinic admin never reads across tenants")
}

func (s *AccountServiceTestSuite) TestBootstrapAdmin_SkippedWithoutCredentials() {
	s.Require().NoError(s.service.EnsureBootstrapAdmin(s.ctx))

	_, err := s.f.repo.Tenant().GetPlaceholder(s.ctx)
	s.ErrorIs(err, apperror.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestLogin_Success() {
	reg := s.f.register(s.T(), "Smile Dental", "ana@smile.test")

	result, err := s.service.Login(s.ctx, "  ANA@smile.test ", "correct-horse-battery")

	s.Require().NoError(err)
	s.Equal(reg.User.ID, result.Claims.UserID)
	s.Equal(reg.Tenant.ID, result.Claims.TenantID)
	s.NotEmpty(result.Claims.ID)
	s.Contains(s.f.auditActions(s.T(), reg.Tenant.ID), domain.ActionLoginSucceeded)
}

func (s *AccountServiceTestSuite) TestLogin_WrongPasswordAndUnknownEmailLookTheSame() {
	reg := s.f.register(s.T(), "Smile Dental", "ana@smile.test")

	_, errWrong := s.service.Login(s.ctx, "ana@smile.test", "nope-nope-nope")
	_, errUnknown := s.service.Login(s.ctx, "ghost@smile.test", "nope-nope-nope")

	s.ErrorIs(errWrong, apperror.ErrUnauthenticated)
	s.ErrorIs(errUnknown, apperror.ErrUnauthenticated)
	s.Equal(errWrong.Error(), errUnknown.Error())

	s.Equal(int64(2), s.f.auditCount(s.T(), domain.ActionLoginFailed))
	s.Contains(s.f.auditActions(s.T(), reg.Tenant.ID), domain.ActionLoginFailed)
	s.Contains(s.f.auditActions(s.T(), ""), domain.ActionLoginFailed, "unknown email is recorded without a tenant")
}

func (s *AccountServiceTestSuite) TestLogin_InactiveClinic() {
	reg := s.f.register(s.T(), "Smile Dental", "ana@smile.test")
	s.Require().NoError(s.f.db.Model(&domain.Tenant{}).Where("id = ?", reg.Tenant.ID).Update("is_active", false).Error)

	_, err := s.service.Login(s.ctx, "ana@smile.test", "correct-horse-battery")

	s.ErrorIs(err, apperror.ErrForbidden)
}

func (s *AccountServiceTestSuite) TestLogin_SucceedsWhenAuditStoreIsDown() {
	// Arrange
	s.f.register(s.T(), "Smile Dental", "ana@smile.test")

	failingRepo := mocks.NewAuditLogRepository(s.T())
	failingRepo.On("Create", mock.Anything, mock.Anything).Return(apperror.ErrPersistenceUnavailable)
	s.f.audit = NewAuditTrail(failingRepo, nil, nil, s.f.log, nil)
	svc := s.f.accounts(s.T())

	// Act
	result, err := svc.Login(s.ctx, "ana@smile.test", "correct-horse-battery")

	// Assert
	s.NoError(err)
	s.NotEmpty(result.Token)
	failingRepo.AssertCalled(s.T(), "Create", mock.Anything, mock.Anything)
}

func (s *AccountServiceTestSuite) TestRecover() {
	reg := s.f.register(s.T(), "Smile Dental", "ana@smile.test")

	err := s.service.Recover(s.ctx, "ana@smile.test", "wrong-secret", "brand-new-password")
	s.ErrorIs(err, apperror.ErrUnauthenticated)
	s.Contains(s.f.auditActions(s.T(), reg.Tenant.ID), domain.ActionRecoveryFailed)
	s.Zero(s.f.auditCount(s.T(), domain.ActionLoginFailed), "a failed recovery is not a failed login")

	err = s.service.Recover(s.ctx, "ana@smile.test", "blue-river-42", "brand-new-password")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "ana@smile.test", "correct-horse-battery")
	s.ErrorIs(err, apperror.ErrUnauthenticated)
	_, err = s.service.Login(s.ctx, "ana@smile.test", "brand-new-password")
	s.NoError(err)

	s.Contains(s.f.auditActions(s.T(), reg.Tenant.ID), domain.ActionRecoveryUsed)
}

func (s *AccountServiceTestSuite) TestRecover_WithoutRecoverySecret() {
	_, err := s.service.Register(s.ctx, dto.RegisterRequest{
		ClinicName: "Smile", Name: "Ana", Email: "ana@smile.test", Password: "correct-horse-battery",
	})
	s.Require().NoError(err)

	err = s.service.Recover(s.ctx, "ana@smile.test", "anything-at-all", "brand-new-password")

	s.ErrorIs(err, apperror.ErrUnauthenticated)
}

func (s *AccountServiceTestSuite) TestChangePassword() {
	reg := s.f.register(s.T(), "Smile Dental", "ana@smile.test")

	err := s.service.ChangePassword(s.ctx, reg.Claims, "not-the-password", "brand-new-password")
	s.ErrorIs(err, apperror.ErrUnauthenticated)

	err = s.service.ChangePassword(s.ctx, reg.Claims, "correct-horse-battery", "brand-new-password")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "ana@smile.test", "brand-new-password")
	s.NoError(err)
	s.Contains(s.f.auditActions(s.T(), reg.Tenant.ID), domain.ActionPasswordChanged)
}

func (s *AccountServiceTestSuite) TestLogout_RevokesCredential() {
	reg := s.f.register(s.T(), "Smile Dental", "ana@smile.test")
	revoker := mocks.NewTokenRevoker(s.T())
	revoker.On("Revoke", mock.Anything, reg.Claims).Return(nil).Once()
	svc := s.f.accounts(s.T(), WithRevocations(revoker))

	s.Require().NoError(svc.Logout(s.ctx, reg.Claims))

	s.Contains(s.f.auditActions(s.T(), reg.Tenant.ID), domain.ActionLogout)
}

func (s *AccountServiceTestSuite) TestLogout_RevocationStoreDown() {
	reg := s.f.register(s.T(), "Smile Dental", "ana@smile.test")
	revoker := mocks.NewTokenRevoker(s.T())
	revoker.On("Revoke", mock.Anything, mock.Anything).Return(errors.New("redis down"))
	svc := s.f.accounts(s.T(), WithRevocations(revoker))

	err := svc.Logout(s.ctx, reg.Claims)

	s.ErrorIs(err, apperror.ErrPersistenceUnavailable)
}

func (s *AccountServiceTestSuite) TestCreateStaff_RespectsUserQuota() {
	reg := s.f.register(s.T(), "Smile Dental", "ana@smile.test")
	req := dto.CreateUserRequest{Name: "Sam", Email: "sam@smile.test", Password: "front-desk-pass", Role: string(domain.RoleReceptionist)}

	user, err := s.service.CreateStaff(s.ctx, reg.Claims, req)
	s.Require().NoError(err)
	s.Equal(reg.Tenant.ID, user.TenantIDValue())

	req.Email = "third@smile.test"
	_, err = s.service.CreateStaff(s.ctx, reg.Claims, req)
	s.ErrorIs(err, apperror.ErrQuotaExceeded, "free plan allows two users")

	staff, err := s.service.ListStaff(s.ctx, reg.Claims)
	s.Require().NoError(err)
	s.Len(staff, 2)
}

func (s *AccountServiceTestSuite) TestCreateStaff_Validation() {
	reg := s.f.register(s.T(), "Smile Dental", "ana@smile.test")

	_, err := s.service.CreateStaff(s.ctx, reg.Claims, dto.CreateUserRequest{
		Name: "Sam", Email: "sam@smile.test", Password: "front-desk-pass", Role: "JANITOR",
	})
	s.ErrorIs(err, apperror.ErrInvalidInput)

	_, err = s.service.CreateStaff(s.ctx, reg.Claims, dto.CreateUserRequest{
		Name: "Dup", Email: "ana@smile.test", Password: "front-desk-pass", Role: "DENTIST",
	})
	s.ErrorIs(err, apperror.ErrConflict)

	_, err = s.service.CreateStaff(s.ctx, &auth.Claims{UserID: "x", Role: domain.RoleAdmin}, dto.CreateUserRequest{
		Name: "Sam", Email: "sam@smile.test", Password: "front-desk-pass", Role: "DENTIST",
	})
	s.ErrorIs(err, apperror.ErrForbidden, "claims without a tenant cannot create staff")
}
