package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/auth/password"
	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/metrics"
	"github.com/kingrain94/clinic-access-core/internal/quota"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

const (
	MinPasswordLength = 8

	maxSlugAttempts = 20
	placeholderName = "Temporary Admin"
)

//go:generate mockery --name QuotaTracker --output ../mocks
type QuotaTracker interface {
	CheckAndConsume(ctx context.Context, scope tenancy.Scope, kind quota.ResourceKind, amount int) (quota.Outcome, error)
	Reserve(ctx context.Context, tx repository.PostgresRepository, scope tenancy.Scope, kind quota.ResourceKind, amount int) (quota.Outcome, error)
}

//go:generate mockery --name TokenRevoker --output ../mocks
type TokenRevoker interface {
	Revoke(ctx context.Context, claims *auth.Claims) error
}

type AuthResult struct {
	Token  string
	Claims *auth.Claims
	User   *domain.User
}

type RegisterResult struct {
	AuthResult
	Tenant *domain.Tenant
}

type AccountService struct {
	repo        repository.PostgresRepository
	codec       *auth.TokenCodec
	revocations TokenRevoker
	quota       QuotaTracker
	audit       *AuditTrail
	plans       *config.PlanConfig
	bootstrap   config.BootstrapConfig
	logger      *logger.Logger
	metrics     *metrics.Metrics
	hashParams  password.Params
	dummyHash   string
	now         func() time.Time
}

type AccountOption func(*AccountService)

// WithRevocations enables logout. Without it logout is audited only and
// credentials stay valid until they expire.
func WithRevocations(revocations TokenRevoker) AccountOption {
	return func(s *AccountService) {
		s.revocations = revocations
	}
}

func WithBootstrap(cfg config.BootstrapConfig) AccountOption {
	return func(s *AccountService) {
		s.bootstrap = cfg
	}
}

// WithHashParams overrides the Argon2id cost for new hashes.
func WithHashParams(p password.Params) AccountOption {
	return func(s *AccountService) {
		s.hashParams = p
	}
}

func WithAccountMetrics(m *metrics.Metrics) AccountOption {
	return func(s *AccountService) {
		s.metrics = m
	}
}

func NewAccountService(
	repo repository.PostgresRepository,
	codec *auth.TokenCodec,
	quota QuotaTracker,
	audit *AuditTrail,
	plans *config.PlanConfig,
	logger *logger.Logger,
	opts ...AccountOption,
) (*AccountService, error) {
	s := &AccountService{
		repo:       repo,
		codec:      codec,
		quota:      quota,
		audit:      audit,
		plans:      plans,
		logger:     logger,
		hashParams: password.DefaultParams,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Compared against when the email is unknown so a miss costs as much as
	// a wrong password.
	dummy, err := password.HashWithParams(uuid.NewString(), s.hashParams)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	s.dummyHash = dummy

	return s, nil
}

// Register creates a clinic with its first ADMIN and an active subscription,
// and signs the admin in. When the bootstrap placeholder still exists it is
// removed in the same transaction.
func (s *AccountService) Register(ctx context.Context, req dto.RegisterRequest) (*RegisterResult, error) {
	plan := s.plans.DefaultPlan
	if req.Plan != "" {
		plan = domain.PlanType(req.Plan)
	}
	if _, err := s.plans.Limits(plan); err != nil {
		return nil, ErrUnknownPlan
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apperror.New(apperror.KindInvalidInput, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	passwordHash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	var recoveryHash *string
	if req.RecoverySecret != "" {
		h, err := s.hash(req.RecoverySecret)
		if err != nil {
			return nil, err
		}
		recoveryHash = &h
	}

	tenantSlug, err := s.uniqueSlug(ctx, req.ClinicName)
	if err != nil {
		return nil, err
	}

	tenant := &domain.Tenant{Name: req.ClinicName, Slug: tenantSlug, IsActive: true}
	user := &domain.User{
		Email:              req.Email,
		Name:               req.Name,
		Role:               domain.RoleAdmin,
		PasswordHash:       passwordHash,
		RecoverySecretHash: recoveryHash,
		Active:             true,
	}
	replacedPlaceholder := false

	err = s.repo.Transaction(ctx, func(tx repository.PostgresRepository) error {
		placeholder, err := tx.Tenant().GetPlaceholder(ctx)
		switch {
		case err == nil:
			if err := tx.User().DeleteUnattached(ctx); err != nil {
				return err
			}
			if err := tx.Tenant().Delete(ctx, placeholder.ID); err != nil {
				return err
			}
			replacedPlaceholder = true
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		if _, err := tx.Tenant().Create(ctx, tenant); err != nil {
			return err
		}
		scope, err := tenancy.ForTenant(tenant.ID)
		if err != nil {
			return err
		}

		if err := scope.Stamp(user); err != nil {
			return err
		}
		if err := tx.User().Create(ctx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrEmailAlreadyExists
			}
			return err
		}

		sub, err := s.plans.NewSubscription(tenant.ID, plan, s.now().UTC())
		if err != nil {
			return ErrUnknownPlan
		}
		return tx.Subscription().Create(ctx, scope, sub)
	})
	if err != nil {
		return nil, err
	}

	if replacedPlaceholder {
		s.logger.Info("Bootstrap admin replaced by first registration", zap.String("tenant_id", tenant.ID))
	}

	s.audit.Record(ctx, AuditEntry{
		TenantID: tenant.ID,
		UserID:   user.ID,
		Action:   domain.ActionTenantRegistered,
		Resource: "tenant",
		Metadata: map[string]any{"tenant_id": tenant.ID, "slug": tenant.Slug, "plan": string(plan)},
	})
	s.audit.Record(ctx, AuditEntry{
		TenantID: tenant.ID,
		UserID:   user.ID,
		Action:   domain.ActionUserCreated,
		Resource: "user",
		Metadata: map[string]any{"created_user_id": user.ID, "role": string(user.Role)},
	})

	token, claims, err := s.codec.IssueForUser(user)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		AuthResult: AuthResult{Token: token, Claims: claims, User: user},
		Tenant:     tenant,
	}, nil
}

// EnsureBootstrapAdmin creates the temporary admin used before any clinic
// exists. It does nothing when bootstrap credentials are not configured,
// when a clinic is already registered, or when the placeholder exists.
func (s *AccountService) EnsureBootstrapAdmin(ctx context.Context) error {
	if s.bootstrap.AdminEmail == "" || s.bootstrap.AdminPassword == "" {
		return nil
	}

	registered, err := s.repo.Tenant().CountRegistered(ctx)
	if err != nil {
		return err
	}
	if registered > 0 {
		return nil
	}
	if _, err := s.repo.Tenant().GetPlaceholder(ctx); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := s.hash(s.bootstrap.AdminPassword)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Email:        s.bootstrap.AdminEmail,
		Name:         placeholderName,
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
		Active:       true,
	}
	err = s.repo.Transaction(ctx, func(tx repository.PostgresRepository) error {
		placeholder := &domain.Tenant{
			Name:          placeholderName,
			Slug:          domain.PlaceholderTenantSlug,
			IsActive:      true,
			IsPlaceholder: true,
		}
		if _, err := tx.Tenant().Create(ctx, placeholder); err != nil {
			return err
		}
		return tx.User().Create(ctx, admin)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		s.logger.Warn("Bootstrap admin not created, email or placeholder already taken")
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("Bootstrap admin created", zap.String("user_id", admin.ID))
	s.audit.Record(ctx, AuditEntry{
		UserID:   admin.ID,
		Action:   domain.ActionUserCreated,
		Resource: "user",
		Metadata: map[string]any{"created_user_id": admin.ID, "bootstrap": true},
	})
	return nil
}

// Login verifies email and password and issues a credential. Every outcome
// is audited. Unknown emails and wrong passwords return the same error.
func (s *AccountService) Login(ctx context.Context, email, secret string) (*AuthResult, error) {
	user, err := s.repo.User().GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		password.Verify(secret, s.dummyHash)
		s.loginFailed(ctx, nil, email, "unknown_email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !password.Verify(secret, user.PasswordHash) {
		s.loginFailed(ctx, user, email, "wrong_password")
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		s.loginFailed(ctx, user, email, "account_disabled")
		return nil, ErrAccountDisabled
	}
	if err := s.checkTenantActive(ctx, user); err != nil {
		if errors.Is(err, ErrTenantInactive) {
			s.loginFailed(ctx, user, email, "tenant_inactive")
		}
		return nil, err
	}

	token, claims, err := s.codec.IssueForUser(user)
	if err != nil {
		return nil, err
	}

	s.metrics.AuthAttempt("login", true)
	s.audit.Record(ctx, AuditEntry{
		TenantID: user.TenantIDValue(),
		UserID:   user.ID,
		Action:   domain.ActionLoginSucceeded,
		Resource: "session",
		Metadata: map[string]any{"jti": claims.ID},
	})

	return &AuthResult{Token: token, Claims: claims, User: user}, nil
}

// Recover resets a password with the recovery secret chosen at
// registration. The recovery secret itself is left unchanged.
func (s *AccountService) Recover(ctx context.Context, email, recoverySecret, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperror.New(apperror.KindInvalidInput, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	user, err := s.repo.User().GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		password.Verify(recoverySecret, s.dummyHash)
		s.recoveryFailed(ctx, nil, email)
		return ErrInvalidRecovery
	}
	if err != nil {
		return err
	}

	if user.RecoverySecretHash == nil || !password.Verify(recoverySecret, *user.RecoverySecretHash) {
		s.recoveryFailed(ctx, user, email)
		return ErrInvalidRecovery
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.User().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	s.metrics.AuthAttempt("recover", true)
	s.audit.Record(ctx, AuditEntry{
		TenantID: user.TenantIDValue(),
		UserID:   user.ID,
		Action:   domain.ActionRecoveryUsed,
		Resource: "user",
	})
	return nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AccountService) ChangePassword(ctx context.Context, claims *auth.Claims, current, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperror.New(apperror.KindInvalidInput, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	user, err := s.repo.User().GetByID(ctx, claims.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.ErrUnauthenticated
	}
	if err != nil {
		return err
	}
	if !password.Verify(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.User().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		TenantID: user.TenantIDValue(),
		UserID:   user.ID,
		Action:   domain.ActionPasswordChanged,
		Resource: "user",
	})
	return nil
}

// Logout revokes the presented credential when revocation is enabled.
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revocations != nil {
		if err := s.revocations.Revoke(ctx, claims); err != nil {
			return apperror.Wrap(apperror.KindPersistenceUnavailable, "failed to revoke credential", err)
		}
	}

	s.audit.Record(ctx, AuditEntry{
		TenantID: claims.TenantID,
		UserID:   claims.UserID,
		Action:   domain.ActionLogout,
		Resource: "session",
		Metadata: map[string]any{"jti": claims.ID, "revoked": s.revocations != nil},
	})
	return nil
}

// CreateStaff adds a user to the caller's clinic within the plan's user limit.
func (s *AccountService) CreateStaff(ctx context.Context, claims *auth.Claims, req dto.CreateUserRequest) (*domain.User, error) {
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		return nil, err
	}
	if !domain.IsValidRole(req.Role) {
		return nil, ErrInvalidRole
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apperror.New(apperror.KindInvalidInput, fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         domain.Role(req.Role),
		PasswordHash: hash,
		Active:       true,
	}
	if err := scope.Stamp(user); err != nil {
		return nil, err
	}
	err = s.repo.Transaction(ctx, func(tx repository.PostgresRepository) error {
		outcome, err := s.quota.Reserve(ctx, tx, scope, quota.ResourceUser, 1)
		if err != nil {
			return err
		}
		if outcome != quota.Consumed {
			return outcome.Err(quota.ResourceUser)
		}
		return tx.User().Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		TenantID: scope.TenantID(),
		UserID:   claims.UserID,
		Action:   domain.ActionUserCreated,
		Resource: "user",
		Metadata: map[string]any{"created_user_id": user.ID, "role": string(user.Role)},
	})
	return user, nil
}

func (s *AccountService) ListStaff(ctx context.Context, claims *auth.Claims) ([]domain.User, error) {
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		return nil, err
	}
	return s.repo.User().ListByTenant(ctx, scope)
}

func (s *AccountService) checkTenantActive(ctx context.Context, user *domain.User) error {
	if user.TenantID == nil {
		return nil
	}
	tenant, err := s.repo.Tenant().GetByID(ctx, *user.TenantID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTenantInactive
	}
	if err != nil {
		return err
	}
	if !tenant.IsActive {
		return ErrTenantInactive
	}
	return nil
}

func (s *AccountService) loginFailed(ctx context.Context, user *domain.User, email, reason string) {
	s.metrics.AuthAttempt("login", false)
	entry := AuditEntry{
		Action:   domain.ActionLoginFailed,
		Resource: "session",
		Metadata: map[string]any{"email": domain.NormalizeEmail(email), "reason": reason},
	}
	if user != nil {
		entry.TenantID = user.TenantIDValue()
		entry.UserID = user.ID
	}
	s.audit.Record(ctx, entry)
}

func (s *AccountService) recoveryFailed(ctx context.Context, user *domain.User, email string) {
	s.metrics.AuthAttempt("recover", false)
	entry := AuditEntry{
		Action:   domain.ActionRecoveryFailed,
		Resource: "recovery",
		Metadata: map[string]any{"email": domain.NormalizeEmail(email), "reason": "invalid_recovery_secret"},
	}
	if user != nil {
		entry.TenantID = user.TenantIDValue()
		entry.UserID = user.ID
	}
	s.audit.Record(ctx, entry)
}

// uniqueSlug derives a URL-safe slug from name, suffixing -2, -3, ... while
// the slug is taken.
func (s *AccountService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "clinic"
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := s.repo.Tenant().SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8]), nil
}

func (s *AccountService) hash(secret string) (string, error) {
	h, err := password.HashWithParams(secret, s.hashParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return h, nil
}
