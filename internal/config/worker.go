package config

import "time"

// WorkerConfig sizes a queue consumer process.
type WorkerConfig struct {
	Count        int
	PollInterval time.Duration
}

func DefaultWorkerConfig() *WorkerConfig {
	return &WorkerConfig{
		Count:        getEnvIntWithDefault("WORKER_COUNT", 1),
		PollInterval: getEnvDurationWithDefault("WORKER_POLL_INTERVAL", 5*time.Second),
	}
}
