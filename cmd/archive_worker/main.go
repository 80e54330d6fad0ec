package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kingrain94/clinic-access-core/internal/config"
	"github.com/kingrain94/clinic-access-core/internal/repository/postgres"
	"github.com/kingrain94/clinic-access-core/internal/service/queue"
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
	ctx := context.Background()

	// Archives are read from the replica
	dbConnections, err := config.NewDatabaseConnections()
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer dbConnections.Close()

	pgRepo := postgres.NewPostgresRepository(dbConnections)

	// Initialize SQS
	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient(ctx)
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	// Initialize S3
	s3Config := config.DefaultS3Config()
	s3Client, err := s3Config.GetClient(ctx)
	if err != nil {
		appLogger.Fatal("Failed to create S3 client", err)
	}

	workerConfig := config.DefaultWorkerConfig()
	archiveWorker := worker.NewArchiveWorker(
		sqsService,
		sqsService.ArchiveQueueURL(),
		pgRepo.AuditLog(),
		s3Client,
		s3Config,
		appLogger,
		workerConfig.Count,
		workerConfig.PollInterval,
	)

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	archiveWorker.Start()
	appLogger.Info("Archive worker started")

	// Wait for shutdown signal
	<-sigChan
	appLogger.Info("Shutting down archive worker...")

	archiveWorker.Stop()
	appLogger.Info("Archive worker stopped")
	appLogger.Sync()
}
