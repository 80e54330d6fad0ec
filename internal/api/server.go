package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/domain"
	"github.com/kingrain94/clinic-access-core/internal/middleware"
)

const maxRequestSize = 1 << 20

// Services groups the collaborators behind the HTTP surface.
type Services struct {
	Accounts     AccountService
	Staff        StaffService
	Patients     PatientService
	APIKeys      APIKeyService
	AI           AIService
	Subscription SubscriptionReader
	AuditLogs    AuditLogService
}

type Server struct {
	auth       *AuthHandler
	users      *UserHandler
	patients   *PatientHandler
	apiKeys    *APIKeyHandler
	ai         *AIHandler
	auditLog   *AuditLogHandler
	jwt        *middleware.AuthMiddleware
	rateLimit  *middleware.RateLimitMiddleware
	validation *middleware.ValidationMiddleware
	limits     config.RateLimitConfig
}

func NewServer(
	services Services,
	jwt *middleware.AuthMiddleware,
	rateLimit *middleware.RateLimitMiddleware,
	validation *middleware.ValidationMiddleware,
	limits config.RateLimitConfig,
) *Server {
	return &Server{
		auth:       NewAuthHandler(services.Accounts),
		users:      NewUserHandler(services.Staff),
		patients:   NewPatientHandler(services.Patients),
		apiKeys:    NewAPIKeyHandler(services.APIKeys),
		ai:         NewAIHandler(services.AI, services.Subscription),
		auditLog:   NewAuditLogHandler(services.AuditLogs),
		jwt:        jwt,
		rateLimit:  rateLimit,
		validation: validation,
		limits:     limits,
	}
}

func (s *Server) SetupRoutes(api *gin.RouterGroup) {
	// Apply security middleware first
	api.Use(s.validation.BlockSuspiciousPatterns())
	api.Use(s.validation.SanitizeInput())
	api.Use(s.validation.ValidateRequestSize(maxRequestSize))
	api.Use(s.validation.ValidateContentType("application/json"))
	api.Use(middleware.RequestInfo())

	admin := s.jwt.RequireRole(domain.RoleAdmin)
	clinical := s.jwt.RequireRole(domain.RoleAdmin, domain.RoleDentist)

	{
		public := api.Group("/auth")
		public.POST("/register", s.rateLimit.Limit("register", s.limits.Default), s.auth.Register)
		public.POST("/login", s.rateLimit.Limit("login", s.limits.Login), s.auth.Login)
		public.POST("/recover", s.rateLimit.Limit("recover", s.limits.Recover), s.auth.Recover)
	}

	protected := api.Group("", s.jwt.JWTAuth(), s.rateLimit.Limit("api", s.limits.Default))
	{
		protected.POST("/auth/logout", s.auth.Logout)
		protected.PUT("/auth/password", s.auth.ChangePassword)

		protected.GET("/subscription", s.ai.GetSubscription)
		protected.POST("/ai/analyses", clinical, s.rateLimit.Limit("ai_analysis", s.limits.AIAnalysis), s.ai.Analyze)

		patients := protected.Group("/patients")
		{
			patients.POST("", s.patients.CreatePatient)
			patients.GET("", s.patients.ListPatients)
			patients.GET("/:id", s.patients.GetPatient)
			patients.DELETE("/:id", clinical, s.patients.DeletePatient)
		}

		users := protected.Group("/users", admin)
		{
			users.POST("", s.users.CreateUser)
			users.GET("", s.users.ListUsers)
		}

		apiKeys := protected.Group("/settings/api-keys", admin)
		{
			apiKeys.POST("", s.apiKeys.CreateAPIKey)
			apiKeys.GET("", s.apiKeys.ListAPIKeys)
			apiKeys.GET("/:id", s.apiKeys.GetAPIKey)
			apiKeys.PUT("/:id", s.apiKeys.UpdateAPIKey)
			apiKeys.DELETE("/:id", s.apiKeys.DeleteAPIKey)
		}

		logs := protected.Group("/audit-logs")
		{
			logs.GET("", admin, s.auditLog.ListLogs)
			logs.GET("/mine", s.auditLog.ListMyLogs)
			logs.POST("/archive", admin, s.auditLog.Archive)
		}
	}
}
