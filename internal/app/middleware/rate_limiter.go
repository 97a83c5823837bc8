package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"resident-directory-service/internal/domain/services"
	"resident-directory-service/internal/error/code"
	"resident-directory-service/internal/error/response"
	"resident-directory-service/pkg/logger"
)

// Limiter 判断某个键的请求是否被允许
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// RateLimiterConfig 限流器配置
type RateLimiterConfig struct {
	Rate       float64       // 每秒允许的请求数
	Burst      int           // 允许的突发请求数
	ExpiryTime time.Duration // 空闲限流器的过期时间
}

// DefaultRateLimiterConfig 默认限流器配置
var DefaultRateLimiterConfig = RateLimiterConfig{
	Rate:       20,
	Burst:      40,
	ExpiryTime: 10 * time.Minute,
}

func (cfg RateLimiterConfig) withDefaults() RateLimiterConfig {
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRateLimiterConfig.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimiterConfig.Burst
	}
	if cfg.ExpiryTime <= 0 {
		cfg.ExpiryTime = DefaultRateLimiterConfig.ExpiryTime
	}
	return cfg
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter 进程内的令牌桶限流器，每个键一个桶
type MemoryLimiter struct {
	cfg     RateLimiterConfig
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// NewMemoryLimiter 创建进程内限流器
func NewMemoryLimiter(cfg RateLimiterConfig) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:     cfg.withDefaults(),
		clients: make(map[string]*clientLimiter),
	}
}

// Allow 消耗一个令牌
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	cl, ok := l.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(l.cfg.Rate), l.cfg.Burst)}
		l.clients[key] = cl
	}
	cl.lastSeen = time.Now()
	l.mu.Unlock()

	return cl.limiter.Allow(), nil
}

// Sweep 清理空闲超过过期时间的限流器，返回清理数量
func (l *MemoryLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, cl := range l.clients {
		if now.Sub(cl.lastSeen) > l.cfg.ExpiryTime {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}

// Run 定期清理过期的限流器，直到 ctx 结束
func (l *MemoryLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := l.Sweep(now); n > 0 {
				logger.Debug("清理了 %d 个过期的限流器", n)
			}
		}
	}
}

// RedisLimiter 基于 Redis 的固定窗口限流，多实例部署时共享计数
type RedisLimiter struct {
	redis  services.InterfaceRedisService
	limit  int64
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisLimiter 每个键每秒最多 Burst 个请求
func NewRedisLimiter(redis services.InterfaceRedisService, cfg RateLimiterConfig) *RedisLimiter {
	cfg = cfg.withDefaults()
	return &RedisLimiter{
		redis:  redis,
		limit:  int64(cfg.Burst),
		window: time.Second,
		prefix: "ratelimit:",
		now:    time.Now,
	}
}

// Allow 增加当前窗口的计数
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	bucket := l.now().UnixNano() / int64(l.window)
	n, err := l.redis.IncrWindow(ctx, fmt.Sprintf("%s%s:%d", l.prefix, key, bucket), 2*l.window)
	if err != nil {
		return false, err
	}
	return n <= l.limit, nil
}

// RateLimiter 创建限流中间件；限流后端出错时放行请求
func RateLimiter(limiter Limiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), keyFunc(c))
		if err != nil {
			logger.Warning("限流检查失败，放行请求: %v", err)
			c.Next()
			return
		}
		if !allowed {
			c.Header("Retry-After", strconv.Itoa(1))
			response.FailWithMessage(c, code.ErrTooManyRequests, "请求频率过高，请稍后再试", nil)
			return
		}
		c.Next()
	}
}
