package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/clinic-access-core/internal/api/dto"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/auth/password"
	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/middleware"
	"github.com/kingrain94/clinic-access-core/internal/quota"
	"github.com/kingrain94/clinic-access-core/internal/ratelimit"
	"github.com/kingrain94/clinic-access-core/internal/repository/postgres"
	"github.com/kingrain94/clinic-access-core/internal/service"
	"github.com/kingrain94/clinic-access-core/internal/testutil"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

// TestAuditLogs_BootstrapCredentialRetiredByRegistration drives the real
// account, audit and auth stack: the bootstrap admin's credential reads every
// tenant's trail until the first clinic registers, and is refused afterwards
// even though it has not expired.
func TestAuditLogs_BootstrapCredentialRetiredByRegistration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	db := testutil.NewTestDB(t)
	repo := postgres.NewPostgresRepository(config.NewSingleConnection(db))
	trail := service.NewAuditTrail(repo.AuditLog(), nil, nil, log, nil, service.WithOperators(repo.User()))

	codec, err := auth.NewTokenCodec("platform-audit-secret", time.Hour)
	require.NoError(t, err)

	plans := &config.PlanConfig{
		Plans: map[domain.PlanType]config.PlanLimits{
			domain.PlanFree: {MaxPatients: 2, MaxUsers: 2, AIQueriesLimit: 2},
		},
		DefaultPlan: domain.PlanFree,
		Period:      30 * 24 * time.Hour,
	}
	accounts, err := service.NewAccountService(repo, codec, quota.NewTracker(db, log), trail, plans, log,
		service.WithHashParams(password.Params{Memory: 1024, Time: 1, Threads: 1}),
		service.WithBootstrap(config.BootstrapConfig{AdminEmail: "root@platform.local", AdminPassword: "bootstrap-password"}),
	)
	require.NoError(t, err)
	require.NoError(t, accounts.EnsureBootstrapAdmin(context.Background()))

	rule := config.RateLimitRule{Limit: 100, Window: time.Minute}
	limiter := ratelimit.NewLimiter(ratelimit.NewGormStore(db), log, ratelimit.WithCleanupProbability(0))
	server := NewServer(
		Services{Accounts: accounts, AuditLogs: trail},
		middleware.NewAuthMiddleware(codec, log),
		middleware.NewRateLimitMiddleware(limiter),
		middleware.NewValidationMiddleware(log),
		config.RateLimitConfig{Login: rule, Recover: rule, AIAnalysis: rule, Default: rule},
	)
	router := gin.New()
	server.SetupRoutes(router.Group("/api/v1"))

	do := func(method, path, token, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/v1"+path, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/auth/login", "", `{"email":"root@platform.local","password":"bootstrap-password"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))

	w = do(http.MethodGet, "/audit-logs", session.Token, "")
	assert.Equal(t, http.StatusOK, w.Code, "the live bootstrap admin reads across tenants")

	w = do(http.MethodPost, "/auth/register", "",
		`{"clinic_name":"Smile Dental","name":"Ana","email":"ana@smile.test","password":"correct-horse-battery"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(http.MethodGet, "/audit-logs", session.Token, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "Smile Dental")
}
