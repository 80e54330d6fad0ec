package service

import (
	"context"
	"strings"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
)

type APIKeyService struct {
	repo   repository.PostgresRepository
	sealer *auth.Sealer
	audit  *AuditTrail
}

func NewAPIKeyService(repo repository.PostgresRepository, sealer *auth.Sealer, audit *AuditTrail) *APIKeyService {
	return &APIKeyService{
		repo:   repo,
		sealer: sealer,
		audit:  audit,
	}
}

func (s *APIKeyService) Create(ctx context.Context, claims *auth.Claims, req dto.CreateAPIKeyRequest) (*domain.APIKey, error) {
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		return nil, err
	}

	sealed, err := s.sealer.Seal(req.Key)
	if err != nil {
		return nil, err
	}

	key := &domain.APIKey{
		Provider:  strings.ToLower(strings.TrimSpace(req.Provider)),
		Name:      req.Name,
		KeySealed: sealed,
		KeyPrefix: auth.MaskKey(req.Key),
		CreatedBy: claims.UserID,
	}
	if err := s.repo.APIKey().Create(ctx, scope, key); err != nil {
		return nil, err
	}

	s.record(ctx, scope, claims, domain.ActionAPIKeyCreated, key)
	return key, nil
}

func (s *APIKeyService) List(ctx context.Context, claims *auth.Claims) ([]domain.APIKey, error) {
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		return nil, err
	}
	return s.repo.APIKey().List(ctx, scope)
}

// Get returns one key's metadata. Reads of a single key are audited.
func (s *APIKeyService) Get(ctx context.Context, claims *auth.Claims, id string) (*domain.APIKey, error) {
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		return nil, err
	}

	key, err := s.repo.APIKey().GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	s.record(ctx, scope, claims, domain.ActionAPIKeyViewed, key)
	return key, nil
}

func (s *APIKeyService) Update(ctx context.Context, claims *auth.Claims, id string, req dto.UpdateAPIKeyRequest) (*domain.APIKey, error) {
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		return nil, err
	}
	if req.Name == "" && req.Key == "" {
		return nil, apperror.New(apperror.KindInvalidInput, "nothing to update")
	}

	key, err := s.repo.APIKey().GetByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	rotated := req.Key != ""
	if req.Name != "" {
		key.Name = req.Name
	}
	if rotated {
		sealed, err := s.sealer.Seal(req.Key)
		if err != nil {
			return nil, err
		}
		key.KeySealed = sealed
		key.KeyPrefix = auth.MaskKey(req.Key)
	}

	if err := s.repo.APIKey().Update(ctx, scope, key); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		TenantID: scope.TenantID(),
		UserID:   claims.UserID,
		Action:   domain.ActionAPIKeyUpdated,
		Resource: "api_key",
		Metadata: map[string]any{"api_key_id": key.ID, "provider": key.Provider, "rotated": rotated},
	})
	return key, nil
}

func (s *APIKeyService) Delete(ctx context.Context, claims *auth.Claims, id string) error {
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		return err
	}

	if err := s.repo.APIKey().Delete(ctx, scope, id); err != nil {
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		TenantID: scope.TenantID(),
		UserID:   claims.UserID,
		Action:   domain.ActionAPIKeyDeleted,
		Resource: "api_key",
		Metadata: map[string]any{"api_key_id": id},
	})
	return nil
}

// Resolve returns the plaintext of the tenant's newest key for provider.
func (s *APIKeyService) Resolve(ctx context.Context, scope tenancy.Scope, provider string) (string, error) {
	keys, err := s.repo.APIKey().List(ctx, scope)
	if err != nil {
		return "", err
	}

	provider = strings.ToLower(provider)
	for _, key := range keys {
		if key.Provider == provider {
			return s.sealer.Open(key.KeySealed)
		}
	}
	return "", repository.ErrNotFound
}

func (s *APIKeyService) record(ctx context.Context, scope tenancy.Scope, claims *auth.Claims, action domain.AuditAction, key *domain.APIKey) {
	s.audit.Record(ctx, AuditEntry{
		TenantID: scope.TenantID(),
		UserID:   claims.UserID,
		Action:   action,
		Resource: "api_key",
		Metadata: map[string]any{"api_key_id": key.ID, "provider": key.Provider},
	})
}
