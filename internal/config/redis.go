package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:        getEnvWithDefault("REDIS_HOST", "localhost"),
		Port:        getEnvWithDefault("REDIS_PORT", "6379"),
		Password:    getEnvWithDefault("REDIS_PASSWORD", ""),
		DB:          getEnvIntWithDefault("REDIS_DB", 0),
		DialTimeout: getEnvDurationWithDefault("REDIS_DIAL_TIMEOUT", 5*time.Second),
	}
}

// Options returns the go-redis options for this configuration.
func (c *RedisConfig) Options() *redis.Options {
	return &redis.Options{
		Addr:        fmt.Sprintf("%s:%s", c.Host, c.Port),
		Password:    c.Password,
		DB:          c.DB,
		DialTimeout: c.DialTimeout,
	}
}

// GetClient connects and pings Redis.
func (c *RedisConfig) GetClient(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(c.Options())

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
