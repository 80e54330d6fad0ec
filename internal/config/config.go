package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	RateLimitStoreGorm  = "gorm"
	RateLimitStoreRedis = "redis"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET_KEY is required")

// RateLimitRule is a per-endpoint sliding window.
type RateLimitRule struct {
	Limit  int
	Window time.Duration
}

type RateLimitConfig struct {
	Store              string
	CleanupProbability float64
	RetentionWindow    time.Duration
	SweepInterval      time.Duration
	Login              RateLimitRule
	Recover            RateLimitRule
	AIAnalysis         RateLimitRule
	Default            RateLimitRule
}

type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
}

// AIConfig points at the analysis provider. DefaultAPIKey is used for
// tenants that have not stored a key of their own.
type AIConfig struct {
	Endpoint        string
	DefaultProvider string
	DefaultAPIKey   string `json:"-"`
	Timeout         time.Duration
}

type Config struct {
	ServerPort         int    `json:"server_port"`
	Environment        string `json:"environment"`
	JWTSecretKey       string `json:"-"`
	JWTExpirationHours int    `json:"jwt_expiration_hours"`
	RevocationEnabled  bool   `json:"revocation_enabled"`
	// SearchEnabled and QueueEnabled turn on the audit trail's secondary
	// sinks. The relational store is always written.
	SearchEnabled bool `json:"search_enabled"`
	QueueEnabled  bool `json:"queue_enabled"`
	// APIKeySecret seals stored provider keys. Defaults to JWTSecretKey.
	APIKeySecret string `json:"-"`
	RateLimit    RateLimitConfig
	Bootstrap    BootstrapConfig
	AI           AIConfig
	Plans        *PlanConfig
}

// Load reads the process configuration from the environment. The signing
// secret is mandatory; everything else has a default.
func Load() (*Config, error) {
	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		return nil, ErrMissingJWTSecret
	}

	rateLimit, err := LoadRateLimitConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:         getEnvIntWithDefault("SERVER_PORT", 10000),
		Environment:        getEnvWithDefault("APP_ENV", "development"),
		JWTSecretKey:       secret,
		JWTExpirationHours: getEnvIntWithDefault("JWT_EXPIRATION_HOURS", 12),
		RevocationEnabled:  getEnvBoolWithDefault("JWT_REVOCATION_ENABLED", false),
		SearchEnabled:      getEnvBoolWithDefault("OPENSEARCH_ENABLED", false),
		QueueEnabled:       getEnvBoolWithDefault("AWS_SQS_ENABLED", false),
		APIKeySecret:       getEnvWithDefault("API_KEY_SECRET", secret),
		RateLimit:          rateLimit,
		Bootstrap: BootstrapConfig{
			AdminEmail:    getEnvWithDefault("BOOTSTRAP_ADMIN_EMAIL", ""),
			AdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),
		},
		AI: AIConfig{
			Endpoint:        getEnvWithDefault("AI_ENDPOINT", "http://localhost:8090/v1/analyses"),
			DefaultProvider: getEnvWithDefault("AI_DEFAULT_PROVIDER", "openai"),
			DefaultAPIKey:   os.Getenv("AI_API_KEY"),
			Timeout:         getEnvDurationWithDefault("AI_TIMEOUT", 30*time.Second),
		},
		Plans: LoadPlanConfig(),
	}, nil
}

// LoadRateLimitConfig reads the limiter settings on their own, for processes
// that do not serve requests.
func LoadRateLimitConfig() (RateLimitConfig, error) {
	rateLimit := RateLimitConfig{
		Store:              getEnvWithDefault("RATE_LIMIT_STORE", RateLimitStoreGorm),
		CleanupProbability: getEnvFloatWithDefault("RATE_LIMIT_CLEANUP_PROBABILITY", 0.01),
		RetentionWindow:    getEnvDurationWithDefault("RATE_LIMIT_RETENTION", time.Hour),
		SweepInterval:      getEnvDurationWithDefault("RATE_LIMIT_SWEEP_INTERVAL", 10*time.Minute),
		Login: RateLimitRule{
			Limit:  getEnvIntWithDefault("RATE_LIMIT_LOGIN", 5),
			Window: getEnvDurationWithDefault("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute),
		},
		Recover: RateLimitRule{
			Limit:  getEnvIntWithDefault("RATE_LIMIT_RECOVER", 3),
			Window: getEnvDurationWithDefault("RATE_LIMIT_RECOVER_WINDOW", time.Hour),
		},
		AIAnalysis: RateLimitRule{
			Limit:  getEnvIntWithDefault("RATE_LIMIT_AI", 10),
			Window: getEnvDurationWithDefault("RATE_LIMIT_AI_WINDOW", time.Minute),
		},
		Default: RateLimitRule{
			Limit:  getEnvIntWithDefault("DEFAULT_RATE_LIMIT", 300),
			Window: getEnvDurationWithDefault("DEFAULT_RATE_LIMIT_WINDOW", time.Minute),
		},
	}
	if rateLimit.Store != RateLimitStoreGorm && rateLimit.Store != RateLimitStoreRedis {
		return RateLimitConfig{}, fmt.Errorf("unsupported RATE_LIMIT_STORE %q", rateLimit.Store)
	}
	return rateLimit, nil
}

// TokenTTL returns the lifetime of issued session credentials.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}
