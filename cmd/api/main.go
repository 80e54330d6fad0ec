package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kingrain94/clinic-access-core/docs"
	"github.com/kingrain94/clinic-access-core/internal/api"
	"github.com/kingrain94/clinic-access-core/internal/auth"
	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/metrics"
	"github.com/kingrain94/clinic-access-core/internal/middleware"
	"github.com/kingrain94/clinic-access-core/internal/quota"
	"github.com/kingrain94/clinic-access-core/internal/ratelimit"
	"github.com/kingrain94/clinic-access-core/internal/repository"
	"github.com/kingrain94/clinic-access-core/internal/repository/composite"
	"github.com/kingrain94/clinic-access-core/internal/repository/opensearch"
	"github.com/kingrain94/clinic-access-core/internal/repository/postgres"
	"github.com/kingrain94/clinic-access-core/internal/service"
	"github.com/kingrain94/clinic-access-core/internal/service/analysis"
	"github.com/kingrain94/clinic-access-core/internal/service/queue"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

// @title           Clinic Access Core API
// @version         1.0
// @description     Multi-tenant access control, auditing and quota service for dental clinics.

// @host      localhost:10000
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @externalDocs.description  OpenAPI
// @externalDocs.url          https://swagger.io/resources/open-api/
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Initialize logger
	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		appLogger.Fatal("Failed to load config", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	dbConnections, err := config.NewDatabaseConnections()
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer dbConnections.Close()

	if err := dbConnections.Migrate(); err != nil {
		appLogger.Fatal("Failed to migrate database", err)
	}
	appLogger.Info("Database connections established - writer and reader connected")

	appMetrics := metrics.New(nil)

	// Redis backs the rate limiter and revocation list when either asks for it
	var redisClient *redis.Client
	if cfg.RateLimit.Store == config.RateLimitStoreRedis || cfg.RevocationEnabled {
		redisClient, err = config.DefaultRedisConfig().GetClient(startupCtx)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", err)
		}
		defer redisClient.Close()
	}

	var limiterStore ratelimit.Store = ratelimit.NewGormStore(dbConnections.Writer)
	if cfg.RateLimit.Store == config.RateLimitStoreRedis {
		limiterStore = ratelimit.NewRedisStore(redisClient)
	}
	limiter := ratelimit.NewLimiter(limiterStore, appLogger.Named("ratelimit"),
		ratelimit.WithCleanupProbability(cfg.RateLimit.CleanupProbability),
		ratelimit.WithMetrics(appMetrics),
	)

	// Secondary audit sinks stay nil interfaces when disabled
	var search repository.OpenSearchRepository
	if cfg.SearchEnabled {
		osConfig := config.DefaultOpenSearchConfig()
		osClient, err := osConfig.GetClient()
		if err != nil {
			appLogger.Fatal("Failed to connect to OpenSearch", err)
		}
		search = opensearch.NewRepository(osClient, osConfig)
	}

	var auditQueue service.SQSService
	if cfg.QueueEnabled {
		sqsConfig := config.DefaultSQSConfig()
		sqsClient, err := sqsConfig.GetClient(startupCtx)
		if err != nil {
			appLogger.Fatal("Failed to connect to SQS", err)
		}
		auditQueue = queue.NewSQSService(sqsClient, sqsConfig)
	}

	repo := composite.New(postgres.NewPostgresRepository(dbConnections), search)
	auditTrail := service.NewAuditTrail(repo.AuditLog(), repo.OpenSearch(), auditQueue, appLogger.Named("audit"), appMetrics,
		service.WithOperators(repo.User()))
	tracker := quota.NewTracker(dbConnections.Writer, appLogger.Named("quota"), quota.WithMetrics(appMetrics))

	codec, err := auth.NewTokenCodec(cfg.JWTSecretKey, cfg.TokenTTL())
	if err != nil {
		appLogger.Fatal("Failed to create token codec", err)
	}
	sealer, err := auth.NewSealer(cfg.APIKeySecret)
	if err != nil {
		appLogger.Fatal("Failed to create API key sealer", err)
	}

	accountOpts := []service.AccountOption{
		service.WithBootstrap(cfg.Bootstrap),
		service.WithAccountMetrics(appMetrics),
	}
	authOpts := []middleware.AuthOption{middleware.WithAuthMetrics(appMetrics)}
	if cfg.RevocationEnabled {
		revocations := auth.NewRevocationList(redisClient)
		accountOpts = append(accountOpts, service.WithRevocations(revocations))
		authOpts = append(authOpts, middleware.WithRevocations(revocations))
	}

	// Initialize services
	accountService, err := service.NewAccountService(repo, codec, tracker, auditTrail, cfg.Plans, appLogger.Named("account"), accountOpts...)
	if err != nil {
		appLogger.Fatal("Failed to create account service", err)
	}
	if err := accountService.EnsureBootstrapAdmin(startupCtx); err != nil {
		appLogger.Fatal("Failed to create bootstrap admin", err)
	}

	apiKeyService := service.NewAPIKeyService(repo, sealer, auditTrail)
	aiService := service.NewAIService(
		repo,
		tracker,
		apiKeyService,
		analysis.NewHTTPClient(cfg.AI),
		auditTrail,
		appLogger.Named("ai"),
		cfg.AI.DefaultProvider,
		cfg.AI.DefaultAPIKey,
	)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(codec, appLogger, authOpts...)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(limiter)
	validationMiddleware := middleware.NewValidationMiddleware(appLogger)

	// Initialize server
	server := api.NewServer(
		api.Services{
			Accounts:     accountService,
			Staff:        accountService,
			Patients:     service.NewPatientService(repo, tracker),
			APIKeys:      apiKeyService,
			AI:           aiService,
			Subscription: tracker,
			AuditLogs:    auditTrail,
		},
		authMiddleware,
		rateLimitMiddleware,
		validationMiddleware,
		cfg.RateLimit,
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Observe(appLogger.Named("http"), appMetrics))

	// Swagger documentation endpoint
	docs.SwaggerInfo.Title = "Clinic Access Core API"
	docs.SwaggerInfo.Description = "Multi-tenant access control, auditing and quota service for dental clinics"
	docs.SwaggerInfo.Version = "1.0"
	docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.ServerPort)
	docs.SwaggerInfo.BasePath = "/api/v1"
	docs.SwaggerInfo.Schemes = []string{"http"}

	// Swagger UI endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup API routes
	apiGroup := router.Group("/api/v1")
	server.SetupRoutes(apiGroup)

	// Start server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	// Shutdown the HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server exiting")
	appLogger.Sync()
}
