package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/service"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
)

//go:generate mockery --name AIService --output ../mocks
type AIService interface {
	Analyze(ctx context.Context, claims *auth.Claims, req dto.AnalysisRequest) (*service.AnalysisResult, error)
}

//go:generate mockery --name SubscriptionReader --output ../mocks
type SubscriptionReader interface {
	Usage(ctx context.Context, scope tenancy.Scope) (*domain.Subscription, error)
}

type AIHandler struct {
	*BaseHandler
	service AIService
	usage   SubscriptionReader
}

func NewAIHandler(service AIService, usage SubscriptionReader) *AIHandler {
	return &AIHandler{service: service, usage: usage}
}

// Analyze Run an AI analysis for the caller's clinic
// @Summary Run AI analysis
// @Description Consumes one AI query from the clinic's plan before calling the provider
// @Tags    ai
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   body body dto.AnalysisRequest true "Analysis"
// @Success 200 {object} dto.AnalysisResponse
// @Failure 400 {object} dto.Error
// @Failure 402 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Failure 429 {object} dto.Error
// @Failure 503 {object} dto.Error
// @Router  /ai/analyses [post]
func (h *AIHandler) Analyze(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}
	var req dto.AnalysisRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Analyze(h.RequestCtx(c), claims, req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	resp := dto.AnalysisResponse{Result: result.Text}
	if result.Subscription != nil {
		resp.AIQueriesUsed = result.Subscription.AIQueriesUsed
		resp.AIQueriesLimit = result.Subscription.AIQueriesLimit
	}
	c.JSON(http.StatusOK, resp)
}

// GetSubscription Show the clinic's plan and usage
// @Summary Get subscription usage
// @Tags    subscription
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 402 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Router  /subscription [get]
func (h *AIHandler) GetSubscription(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}
	scope, err := tenancy.FromClaims(claims)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	sub, err := h.usage.Usage(h.RequestCtx(c), scope)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromSubscription(sub))
}
