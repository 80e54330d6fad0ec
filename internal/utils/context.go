package utils

import (
	"context"
	"errors"

	"github.com/kingrain94/clinic-access-core/internal/auth"
)

type ContextKey string

const (
	ClaimsKey    ContextKey = "claims"
	TenantIDKey  ContextKey = "tenant_id"
	ClientIPKey  ContextKey = "client_ip"
	UserAgentKey ContextKey = "user_agent"
)

var (
	ErrNoClaimsInContext = errors.New("no claims found in context")
	ErrInvalidClaimsType = errors.New("invalid claims type")
)

// WithClaims stores verified claims on ctx.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// GetClaimsFromContext returns the verified claims placed by the auth middleware.
func GetClaimsFromContext(ctx context.Context) (*auth.Claims, error) {
	value := ctx.Value(ClaimsKey)
	if value == nil {
		// gin.Context exposes its keys under plain string names.
		value = ctx.Value(string(ClaimsKey))
	}
	if value == nil {
		return nil, ErrNoClaimsInContext
	}

	claims, ok := value.(*auth.Claims)
	if !ok || claims == nil {
		return nil, ErrInvalidClaimsType
	}
	return claims, nil
}

// GetStringFromContext returns a string value stored under key, or "".
func GetStringFromContext(ctx context.Context, key ContextKey) string {
	if value, ok := ctx.Value(key).(string); ok {
		return value
	}
	if value, ok := ctx.Value(string(key)).(string); ok {
		return value
	}
	return ""
}
