package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/ratelimit"
	"github.com/kingrain94/clinic-access-core/internal/worker"
	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Initialize logger
	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))

	limits, err := config.LoadRateLimitConfig()
	if err != nil {
		appLogger.Fatal("Failed to load rate limit config", err)
	}
	if limits.Store == config.RateLimitStoreRedis {
		appLogger.Info("Redis rate limit keys expire on their own, nothing to sweep")
		return
	}

	dbConnections, err := config.NewDatabaseConnections()
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer dbConnections.Close()

	limiter := ratelimit.NewLimiter(ratelimit.NewGormStore(dbConnections.Writer), appLogger.Named("ratelimit"))
	sweeper := worker.NewRateLimitSweeper(limiter, limits.RetentionWindow, limits.SweepInterval, appLogger)

	sweeper.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sweeper.Stop()
	appLogger.Sync()
}
