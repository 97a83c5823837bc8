package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"resident-directory-service/internal/app/middleware"
	"resident-directory-service/internal/app/routes"
	"resident-directory-service/internal/domain/services"
	"resident-directory-service/internal/domain/services/container"
	"resident-directory-service/internal/infrastructure/config"
	"resident-directory-service/internal/infrastructure/database"
	"resident-directory-service/internal/infrastructure/storage"
	Logger "resident-directory-service/pkg/logger"
)

func newServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			if port != "" {
				cfg.ServerPort = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides SERVER_PORT)")
	return cmd
}

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	pool, err := openDatabase(cfg, cfg.DBMigrationMode)
	if err != nil {
		return err
	}
	defer pool.Close()

	// 确保系统中有员工账户
	if err := database.EnsureDefaultStaff(pool.GetDB(), cfg); err != nil {
		return err
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("初始化文件存储失败: %w", err)
	}

	redisService := connectRedis(ctx, cfg)
	if redisService != nil {
		defer redisService.Close()
	}

	serviceContainer := container.NewServiceContainer(pool.GetDB(), cfg, store, redisService)
	limiter := newLimiter(ctx, cfg, redisService)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.ServerPort,
		Handler:           routes.SetupRouter(serviceContainer, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSystemInfo(pool)

	errCh := make(chan error, 1)
	go func() {
		Logger.Info("服务器启动在: http://%s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("启动服务器失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	Logger.Info("收到退出信号，等待进行中的请求完成")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务器失败: %w", err)
	}
	Logger.Info("服务器已关闭")
	return nil
}

// connectRedis 连接 Redis，未配置或不可用时返回 nil
func connectRedis(ctx context.Context, cfg *config.Config) services.InterfaceRedisService {
	if !cfg.HasRedis() {
		return nil
	}

	redisService := services.NewRedisService(cfg)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := redisService.Ping(pingCtx); err != nil {
		Logger.Warning("无法连接 Redis (%s)，改用进程内限流: %v", cfg.GetRedisAddr(), err)
		redisService.Close()
		return nil
	}
	Logger.Info("已连接 Redis: %s", cfg.GetRedisAddr())
	return redisService
}

// newLimiter 有 Redis 时使用共享限流，否则使用进程内限流并定期清理
func newLimiter(ctx context.Context, cfg *config.Config, redisService services.InterfaceRedisService) middleware.Limiter {
	limiterCfg := middleware.RateLimiterConfig{Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst}
	if redisService != nil {
		return middleware.NewRedisLimiter(redisService, limiterCfg)
	}

	limiter := middleware.NewMemoryLimiter(limiterCfg)
	go limiter.Run(ctx, time.Minute)
	return limiter
}
