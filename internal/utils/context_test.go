package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/clinic-access-core/internal/auth"
)

func TestGetClaimsFromContext(t *testing.T) {
	claims := &auth.Claims{UserID: "u1", TenantID: "t1"}
	ctx := WithClaims(context.Background(), claims)

	got, err := GetClaimsFromContext(ctx)

	require.NoError(t, err)
	assert.Same(t, claims, got)
}

func TestGetClaimsFromContext_Missing(t *testing.T) {
	_, err := GetClaimsFromContext(context.Background())

	assert.ErrorIs(t, err, ErrNoClaimsInContext)
}

func TestGetClaimsFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), ClaimsKey, map[string]any{"tenant_id": "t1"})

	_, err := GetClaimsFromContext(ctx)

	assert.ErrorIs(t, err, ErrInvalidClaimsType)
}

func TestGetStringFromContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), ClientIPKey, "10.0.0.1")

	assert.Equal(t, "10.0.0.1", GetStringFromContext(ctx, ClientIPKey))
	assert.Equal(t, "", GetStringFromContext(ctx, UserAgentKey))
}
