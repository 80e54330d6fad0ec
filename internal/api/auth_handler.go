package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/service"
)

//go:generate mockery --name AccountService --output ../mocks
type AccountService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*service.RegisterResult, error)
	Login(ctx context.Context, email, secret string) (*service.AuthResult, error)
	Recover(ctx context.Context, email, recoverySecret, newPassword string) error
	ChangePassword(ctx context.Context, claims *auth.Claims, current, newPassword string) error
	Logout(ctx context.Context, claims *auth.Claims) error
}

type AuthHandler struct {
	*BaseHandler
	service AccountService
}

func NewAuthHandler(service AccountService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register Create a clinic and its first administrator
// @Summary Register clinic
// @Description Creates a clinic, its ADMIN user and subscription, and returns a session token
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   body body dto.RegisterRequest true "Registration"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} dto.Error
// @Failure 409 {object} dto.Error
// @Failure 503 {object} dto.Error
// @Router  /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Register(h.RequestCtx(c), req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.RegisterResponse{
		TokenResponse: tokenResponse(&result.AuthResult),
		Tenant:        dto.FromTenant(result.Tenant),
	})
}

// Login Exchange credentials for a session token
// @Summary Login
// @Description Verifies email and password and returns a session token
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   body body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.Error
// @Failure 401 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Failure 429 {object} dto.Error
// @Router  /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Login(h.RequestCtx(c), req.Email, req.Password)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse(result))
}

// Recover Reset a password with the recovery secret
// @Summary Recover account
// @Description Sets a new password when the recovery secret matches
// @Tags    auth
// @Accept  json
// @Produce json
// @Param   body body dto.RecoverRequest true "Recovery"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.Error
// @Failure 401 {object} dto.Error
// @Failure 429 {object} dto.Error
// @Router  /auth/recover [post]
func (h *AuthHandler) Recover(c *gin.Context) {
	var req dto.RecoverRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Recover(h.RequestCtx(c), req.Email, req.RecoverySecret, req.NewPassword); err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated"})
}

// ChangePassword Change the caller's password
// @Summary Change password
// @Tags    auth
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   body body dto.ChangePasswordRequest true "Passwords"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.Error
// @Failure 401 {object} dto.Error
// @Router  /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(h.RequestCtx(c), claims, req.CurrentPassword, req.NewPassword); err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password updated"})
}

// Logout Revoke the presented session token
// @Summary Logout
// @Tags    auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.Error
// @Failure 503 {object} dto.Error
// @Router  /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}

	if err := h.service.Logout(h.RequestCtx(c), claims); err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

func tokenResponse(result *service.AuthResult) dto.TokenResponse {
	resp := dto.TokenResponse{
		Token: result.Token,
		User:  dto.FromUser(result.User),
	}
	if result.Claims != nil && result.Claims.ExpiresAt != nil {
		resp.ExpiresAt = result.Claims.ExpiresAt.Time
	}
	return resp
}
