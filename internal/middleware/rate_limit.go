package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/ratelimit"
	"github.com/kingrain94/clinic-access-core/internal/utils"
)

// RateChecker admits or rejects one request against a sliding window.
type RateChecker interface {
	Check(ctx context.Context, identifier, endpoint string, limit int, window time.Duration) ratelimit.Decision
}

type RateLimitMiddleware struct {
	limiter RateChecker
}

func NewRateLimitMiddleware(limiter RateChecker) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// Limit throttles endpoint to rule. Authenticated callers are keyed by user
// id, anonymous ones by client IP.
func (m *RateLimitMiddleware) Limit(endpoint string, rule config.RateLimitRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := m.limiter.Check(c.Request.Context(), identify(c), endpoint, rule.Limit, rule.Window)

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))

		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(rule.Window.Seconds())))
			abortWithError(c, apperror.ErrRateLimited)
			return
		}

		c.Next()
	}
}

func identify(c *gin.Context) string {
	if claims, err := utils.GetClaimsFromContext(c); err == nil {
		return "user:" + claims.UserID
	}
	return "ip:" + c.ClientIP()
}
