package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/apperror"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/metrics"
	"github.com/kingrain94/clinic-access-core/internal/utils"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

var (
	errMissingBearer = apperror.New(apperror.KindUnauthenticated, "authorization header must be 'Bearer <token>'")
	errInvalidToken  = apperror.New(apperror.KindUnauthenticated, "invalid or expired token")
	errRevokedToken  = apperror.New(apperror.KindUnauthenticated, "token has been revoked")
)

// TokenVerifier verifies bearer credentials.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RevocationChecker reports whether a credential id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type AuthMiddleware struct {
	verifier    TokenVerifier
	revocations RevocationChecker
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

type AuthOption func(*AuthMiddleware)

// WithRevocations enables the revocation check. Without it credentials are
// valid until they expire.
func WithRevocations(r RevocationChecker) AuthOption {
	return func(m *AuthMiddleware) {
		m.revocations = r
	}
}

func WithAuthMetrics(mt *metrics.Metrics) AuthOption {
	return func(m *AuthMiddleware) {
		m.metrics = mt
	}
}

func NewAuthMiddleware(verifier TokenVerifier, logger *logger.Logger, opts ...AuthOption) *AuthMiddleware {
	m := &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// JWTAuth rejects the request unless it carries a valid bearer credential.
// The header is checked before anything else runs.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.metrics.AuthAttempt("bearer", false)
			abortWithError(c, errMissingBearer)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			m.metrics.AuthAttempt("bearer", false)
			abortWithError(c, errInvalidToken)
			return
		}

		if m.revocations != nil {
			revoked, err := m.revocations.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// Revocation is a security check, so an unreachable list rejects.
				m.logger.Error("Failed to check token revocation", err, zap.String("jti", claims.ID))
				abortWithError(c, apperror.Wrap(apperror.KindPersistenceUnavailable, "service temporarily unavailable", err))
				return
			}
			if revoked {
				m.metrics.AuthAttempt("bearer", false)
				abortWithError(c, errRevokedToken)
				return
			}
		}

		m.metrics.AuthAttempt("bearer", true)
		c.Set(string(utils.ClaimsKey), claims)
		if claims.TenantID != "" {
			c.Set(string(utils.TenantIDKey), claims.TenantID)
		}
		c.Next()
	}
}

// RequireRole admits callers holding any of roles. It must run after JWTAuth.
func (m *AuthMiddleware) RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := utils.GetClaimsFromContext(c)
		if err != nil {
			abortWithError(c, apperror.ErrUnauthenticated)
			return
		}

		if !domain.HasAnyRole(claims.Role, roles...) {
			abortWithError(c, apperror.ErrForbidden)
			return
		}

		c.Next()
	}
}

// RequestInfo stores the caller address and user agent for the audit trail.
func RequestInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(string(utils.ClientIPKey), c.ClientIP())
		c.Set(string(utils.UserAgentKey), c.Request.UserAgent())
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, " ") {
		return "", false
	}
	return token, true
}

func abortWithError(c *gin.Context, err error) {
	status, body := dto.ErrorFrom(err)
	c.AbortWithStatusJSON(status, body)
}
