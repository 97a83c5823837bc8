package services

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"resident-directory-service/internal/infrastructure/config"
)

// InterfaceRedisService defines the Redis service interface
type InterfaceRedisService interface {
	Ping(ctx context.Context) error
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
	Close() error
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
}

// NewRedisService creates a new Redis service
func NewRedisService(cfg *config.Config) InterfaceRedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &RedisService{Client: client}
}

// Ping checks the connection
func (s *RedisService) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

// IncrWindow increments the counter for key and returns the new value.
// The key expires after window, starting from the first increment.
func (s *RedisService) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := s.Client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := s.Client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Close closes the client
func (s *RedisService) Close() error {
	return s.Client.Close()
}
