package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/domain"
)

//go:generate mockery --name StaffService --output ../mocks
type StaffService interface {
	CreateStaff(ctx context.Context, claims *auth.Claims, req dto.CreateUserRequest) (*domain.User, error)
	ListStaff(ctx context.Context, claims *auth.Claims) ([]domain.User, error)
}

type UserHandler struct {
	*BaseHandler
	service StaffService
}

func NewUserHandler(service StaffService) *UserHandler {
	return &UserHandler{service: service}
}

// CreateUser Add a staff member to the caller's clinic
// @Summary Create user
// @Description Creates a staff account, limited by the plan's user quota
// @Tags    users
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   body body dto.CreateUserRequest true "User"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.Error
// @Failure 402 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Failure 409 {object} dto.Error
// @Router  /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}
	var req dto.CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.CreateStaff(h.RequestCtx(c), claims, req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// ListUsers List the caller's clinic staff
// @Summary List users
// @Tags    users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.UserResponse
// @Failure 401 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Router  /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	claims, ok := h.Claims(c)
	if !ok {
		return
	}

	users, err := h.service.ListStaff(h.RequestCtx(c), claims)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromUsers(users))
}
