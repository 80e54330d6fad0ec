package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/domain"
)

//go:generate mockery --name APIKeyService --output ../mocks
type APIKeyService interface {
	Create(ctx context.Context, claims *auth.Claims, req dto.CreateAPIKeyRequest) (*domain.APIKey, error)
	List(ctx context.Context, claims *auth.Claims) ([]domain.APIKey, error)
	Get(ctx context.Context, claims *auth.Claims, id string) (*domain.APIKey, error)
	Update(ctx context.Context, claims *auth.Claims, id string, req dto.UpdateAPIKeyRequest) (*domain.APIKey, error)
	Delete(ctx context.Context, claims *auth.Claims, id string) error
}

type APIKeyHandler struct {
	*BaseHandler
	service APIKeyService
}

func NewAPIKeyHandler(service APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{service: service}
}

// CreateAPIKey Store an AI provider key for the clinic
// @Summary Create API key
// @Description Stores the key sealed; only a masked prefix is ever returned
// @Tags    settings
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   body body dto.CreateAPIKeyRequest true "API key"
// @Success 201 {object} dto.APIKeyResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Router  /settings/api-keys [post]
func (h *APIKeyHandler) CreateAPIKey(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}
	var req dto.CreateAPIKeyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	key, err := h.service.Create(h.RequestCtx(c), claims, req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromAPIKey(key))
}

// ListAPIKeys List the clinic's provider keys
// @Summary List API keys
// @Tags    settings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.APIKeyResponse
// @Failure 403 {object} dto.Error
// @Router  /settings/api-keys [get]
func (h *APIKeyHandler) ListAPIKeys(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}

	keys, err := h.service.List(h.RequestCtx(c), claims)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAPIKeys(keys))
}

// GetAPIKey Get one provider key
// @Summary Get API key
// @Tags    settings
// @Produce json
// @Security BearerAuth
// @Param   id path string true "API key ID"
// @Success 200 {object} dto.APIKeyResponse
// @Failure 404 {object} dto.Error
// @Router  /settings/api-keys/{id} [get]
func (h *APIKeyHandler) GetAPIKey(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}

	key, err := h.service.Get(h.RequestCtx(c), claims, c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAPIKey(key))
}

// UpdateAPIKey Rename or rotate a provider key
// @Summary Update API key
// @Tags    settings
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   id path string true "API key ID"
// @Param   body body dto.UpdateAPIKeyRequest true "Changes"
// @Success 200 {object} dto.APIKeyResponse
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router  /settings/api-keys/{id} [put]
func (h *APIKeyHandler) UpdateAPIKey(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}
	var req dto.UpdateAPIKeyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	key, err := h.service.Update(h.RequestCtx(c), claims, c.Param("id"), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAPIKey(key))
}

// DeleteAPIKey Delete a provider key
// @Summary Delete API key
// @Tags    settings
// @Security BearerAuth
// @Param   id path string true "API key ID"
// @Success 204
// @Failure 404 {object} dto.Error
// @Router  /settings/api-keys/{id} [delete]
func (h *APIKeyHandler) DeleteAPIKey(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}

	if err := h.service.Delete(h.RequestCtx(c), claims, c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
