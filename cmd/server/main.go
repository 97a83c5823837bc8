// @title           Resident Directory API
// @version         1.0
// @description     Resident directory with photo management, JWT authentication and staff-only administration

// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"resident-directory-service/internal/infrastructure/config"
	"resident-directory-service/internal/infrastructure/database"
	Logger "resident-directory-service/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "resident-directory",
		Short:         "Resident directory HTTP service",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			Logger.Sync()
		},
	}

	root.AddCommand(newServeCommand())
	root.AddCommand(newMigrateCommand())
	root.AddCommand(newCreateStaffCommand())
	return root
}

// bootstrap 加载 .env 并初始化日志
func bootstrap() error {
	// 加载.env文件，失败时继续使用已有的环境变量
	envErr := godotenv.Load()

	cfg := config.GetConfig()
	if err := Logger.SetupLogger(cfg.LogDir); err != nil {
		return fmt.Errorf("初始化日志配置失败: %w", err)
	}

	if envErr != nil {
		Logger.Warning("无法加载.env文件: %v", envErr)
	} else {
		Logger.Info("成功加载.env文件")
	}
	return nil
}

// openDatabase 创建连接池并按配置执行迁移
func openDatabase(cfg *config.Config, mode string) (*database.ConnectionPool, error) {
	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		return nil, fmt.Errorf("无法创建数据库连接池: %w", err)
	}

	Logger.Info("数据库迁移模式: %s", mode)
	if err := database.Migrate(pool.GetDB(), mode); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// printSystemInfo 打印系统信息
func printSystemInfo(pool *database.ConnectionPool) {
	if stats, err := pool.Stats(); err == nil {
		Logger.Info("数据库连接池状态: %+v", stats)
	}

	Logger.Info("系统CPU核心数: %d", runtime.NumCPU())
	Logger.Info("当前Go协程数: %d", runtime.NumGoroutine())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	Logger.Info("系统内存使用: Alloc=%v MiB, TotalAlloc=%v MiB, Sys=%v MiB",
		m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024)
}
