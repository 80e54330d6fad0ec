package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/quota"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/service/analysis"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

//go:generate mockery --name AIClient --output ../mocks
type AIClient interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

//go:generate mockery --name UsageReader --output ../mocks
type UsageReader interface {
	Usage(ctx context.Context, scope tenancy.Scope) (*domain.Subscription, error)
}

type AnalysisResult struct {
	Text         string
	Subscription *domain.Subscription
}

type AIService struct {
	repo          repository.PostgresRepository
	quota         QuotaTracker
	usage         UsageReader
	keys          *APIKeyService
	client        AIClient
	audit         *AuditTrail
	logger        *logger.Logger
	provider      string
	defaultAPIKey string
}

func NewAIService(
	repo repository.PostgresRepository,
	tracker *quota.Tracker,
	keys *APIKeyService,
	client AIClient,
	audit *AuditTrail,
	logger *logger.Logger,
	provider, defaultAPIKey string,
) *AIService {
	return &AIService{
		repo:          repo,
		quota:         tracker,
		usage:         tracker,
		keys:          keys,
		client:        client,
		audit:         audit,
		logger:        logger,
		provider:      provider,
		defaultAPIKey: defaultAPIKey,
	}
}

// Analyze meters one AI query against the tenant's plan and forwards the
// prompt to the provider. The query is consumed before the provider is
// called and is not refunded when the call fails.
func (s *AIService) Analyze(ctx context.Context, claims *auth.Claims, req dto.AnalysisRequest) (*AnalysisResult, error) {
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		return nil, err
	}

	if req.PatientID != "" {
		if _, err := s.repo.Patient().GetByID(ctx, scope, req.PatientID); err != nil {
			return nil, err
		}
	}

	apiKey, err := s.resolveKey(ctx, scope)
	if err != nil {
		return nil, err
	}

	outcome, err := s.quota.CheckAndConsume(ctx, scope, quota.ResourceAIQuery, 1)
	if err != nil {
		return nil, err
	}
	if outcome != quota.Consumed {
		s.audit.Record(ctx, AuditEntry{
			TenantID: scope.TenantID(),
			UserID:   claims.UserID,
			Action:   domain.ActionAIQuotaExceeded,
			Resource: "ai_query",
			Metadata: map[string]any{"outcome": string(outcome)},
		})
		return nil, outcome.Err(quota.ResourceAIQuery)
	}

	result, callErr := s.client.Analyze(ctx, analysis.Request{
		TenantID:  scope.TenantID(),
		Provider:  s.provider,
		APIKey:    apiKey,
		PatientID: req.PatientID,
		Prompt:    req.Prompt,
	})

	metadata := map[string]any{"provider": s.provider, "success": callErr == nil}
	if req.PatientID != "" {
		metadata["patient_id"] = req.PatientID
	}
	s.audit.Record(ctx, AuditEntry{
		TenantID: scope.TenantID(),
		UserID:   claims.UserID,
		Action:   domain.ActionAIQueryConsumed,
		Resource: "ai_query",
		Metadata: metadata,
	})

	if callErr != nil {
		s.logger.Error("AI provider call failed", callErr, zap.String("tenant_id", scope.TenantID()))
		if errors.Is(callErr, analysis.ErrRejected) {
			return nil, apperror.Wrap(apperror.KindInvalidInput, "AI provider rejected the request", callErr)
		}
		return nil, ErrAIUnavailable
	}

	sub, err := s.usage.Usage(ctx, scope)
	if err != nil {
		s.logger.Warn("Failed to reload usage after analysis", zap.Error(err))
	}
	return &AnalysisResult{Text: result.Text, Subscription: sub}, nil
}

func (s *AIService) resolveKey(ctx context.Context, scope tenancy.Scope) (string, error) {
	key, err := s.keys.Resolve(ctx, scope, s.provider)
	if err == nil {
		return key, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return "", err
	}
	if s.defaultAPIKey == "" {
		return "", apperror.New(apperror.KindInvalidInput, "no API key configured for provider "+s.provider)
	}
	return s.defaultAPIKey, nil
}
