package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/middleware"
	"github.com/kingrain94/clinic-access-core/internal/quota"
	"github.com/kingrain94/clinic-access-core/internal/ratelimit"
	"github.com/kingrain94/clinic-access-core/internal/tenancy"
	"github.com/kingrain94/clinic-access-core/internal/testutil"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

const testSecret = "integration-test-secret"

// newRouter wires the real auth and rate limit middleware in front of a
// handler that always succeeds.
func newRouter(tb testing.TB, rule config.RateLimitRule) (*gin.Engine, *auth.TokenCodec) {
	tb.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(tb)
	limiter := ratelimit.NewLimiter(ratelimit.NewGormStore(db), logger.NewNop(), ratelimit.WithCleanupProbability(0))

	codec, err := auth.NewTokenCodec(testSecret, time.Hour)
	require.NoError(tb, err)

	jwt := middleware.NewAuthMiddleware(codec, logger.NewNop())
	rateLimit := middleware.NewRateLimitMiddleware(limiter)

	router := gin.New()
	router.Use(middleware.RequestInfo())
	router.GET("/ping", jwt.JWTAuth(), rateLimit.Limit("ping", rule), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router, codec
}

func issue(tb testing.TB, codec *auth.TokenCodec, userID, tenantID string) string {
	tb.Helper()
	token, err := codec.Issue(auth.Claims{UserID: userID, TenantID: tenantID, Role: domain.RoleDentist})
	require.NoError(tb, err)
	return token
}

func ping(router *gin.Engine, token string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func BenchmarkAuthenticatedRateLimitedRequest(b *testing.B) {
	router, codec := newRouter(b, config.RateLimitRule{Limit: b.N + 1, Window: time.Hour})
	token := issue(b, codec, "bench-user", "tenant-1")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if code := ping(router, token); code != http.StatusNoContent {
			b.Fatalf("Expected status 204, got %d", code)
		}
	}
}

func BenchmarkTokenVerify(b *testing.B) {
	codec, err := auth.NewTokenCodec(testSecret, time.Hour)
	require.NoError(b, err)
	token := issue(b, codec, "bench-user", "tenant-1")

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := codec.Verify(token); err != nil {
				b.Errorf("verify failed: %v", err)
			}
		}
	})
}

func TestHighConcurrencyRateLimit(t *testing.T) {
	const (
		limit    = 10
		requests = 100
	)
	router, codec := newRouter(t, config.RateLimitRule{Limit: limit, Window: time.Hour})
	token := issue(t, codec, "busy-user", "tenant-1")

	var admitted, limited atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch ping(router, token) {
			case http.StatusNoContent:
				admitted.Add(1)
			case http.StatusTooManyRequests:
				limited.Add(1)
			}
		}()
	}
	wg.Wait()

	// Count-then-insert is not atomic, so a burst may overshoot the limit
	// but never undershoot it.
	assert.GreaterOrEqual(t, admitted.Load(), int64(limit))
	assert.Equal(t, int64(requests), admitted.Load()+limited.Load())
	assert.Equal(t, http.StatusTooManyRequests, ping(router, token))

	// Another caller has its own window.
	assert.Equal(t, http.StatusNoContent, ping(router, issue(t, codec, "quiet-user", "tenant-1")))
}

func TestConcurrentAIQuotaIsIsolatedPerTenant(t *testing.T) {
	const (
		limit   = 25
		callers = 60
	)
	db := testutil.NewTestDB(t)
	tracker := quota.NewTracker(db, logger.NewNop())
	now := time.Now().UTC()

	scopes := make([]tenancy.Scope, 0, 2)
	for _, name := range []string{"Clinic A", "Clinic B"} {
		tenant := testutil.SeedTenant(t, db, name)
		require.NoError(t, db.Create(&domain.Subscription{
			TenantID:           tenant.ID,
			PlanType:           domain.PlanPro,
			Status:             domain.SubscriptionActive,
			MaxPatients:        100,
			MaxUsers:           10,
			AIQueriesLimit:     limit,
			CurrentPeriodStart: now.Add(-time.Hour),
			CurrentPeriodEnd:   now.Add(30 * 24 * time.Hour),
		}).Error)

		scope, err := tenancy.ForTenant(tenant.ID)
		require.NoError(t, err)
		scopes = append(scopes, scope)
	}

	consumed := make([]atomic.Int64, len(scopes))
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		for idx, scope := range scopes {
			wg.Add(1)
			go func(idx int, scope tenancy.Scope) {
				defer wg.Done()
				outcome, err := tracker.CheckAndConsume(context.Background(), scope, quota.ResourceAIQuery, 1)
				if err == nil && outcome == quota.Consumed {
					consumed[idx].Add(1)
				}
			}(idx, scope)
		}
	}
	wg.Wait()

	for idx, scope := range scopes {
		assert.Equal(t, int64(limit), consumed[idx].Load())

		sub, err := tracker.Usage(context.Background(), scope)
		require.NoError(t, err)
		assert.Equal(t, limit, sub.AIQueriesUsed)
	}
}
