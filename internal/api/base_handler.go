package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/utils"
)

type BaseHandler struct{}

func (h *BaseHandler) RequestCtx(ginCtx *gin.Context) context.Context {
	ctx := ginCtx.Request.Context()
	for k, v := range ginCtx.Keys {
		// Convert string keys to proper context key types to avoid collisions
		contextKey := utils.ContextKey(k)
		ctx = context.WithValue(ctx, contextKey, v)
	}
	return ctx
}

// Claims returns the verified caller. Routes using it sit behind JWTAuth,
// so a miss is answered with 401.
func (h *BaseHandler) Claims(c *gin.Context) (*auth.Claims, bool) {
	claims, err := utils.GetClaimsFromContext(c)
	if err != nil {
		h.RespondError(c, apperror.ErrUnauthenticated)
		return nil, false
	}
	return claims, true
}

// BindJSON decodes the body into req, answering 400 when it does not validate.
func (h *BaseHandler) BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, dto.Error{Error: "request body too large", Kind: string(apperror.KindInvalidInput)})
			return false
		}
		c.JSON(http.StatusBadRequest, dto.Error{Error: err.Error(), Kind: string(apperror.KindInvalidInput)})
		return false
	}
	return true
}

// RespondError renders err with the status of its kind.
func (h *BaseHandler) RespondError(c *gin.Context, err error) {
	status, body := dto.ErrorFrom(err)
	c.JSON(status, body)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
