package container

import (
	"sync"

	"gorm.io/gorm"

	"resident-directory-service/internal/domain/services"
	"resident-directory-service/internal/infrastructure/config"
	"resident-directory-service/internal/infrastructure/storage"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db      *gorm.DB
	config  *config.Config
	storage storage.FileStorage

	// 基础服务
	jwtService   services.InterfaceJWTService
	userService  services.InterfaceUserService
	redisService services.InterfaceRedisService

	// 业务服务
	residentService services.InterfaceResidentService
	photoService    services.InterfacePhotoService
	adminService    services.InterfaceAdminService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器；redisService 可以为 nil
func NewServiceContainer(db *gorm.DB, cfg *config.Config, store storage.FileStorage, redisService services.InterfaceRedisService) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}
	if cfg == nil {
		panic("配置为空")
	}
	if store == nil {
		panic("文件存储为空")
	}

	container := &ServiceContainer{
		db:           db,
		config:       cfg,
		storage:      store,
		redisService: redisService,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.userService = services.NewUserService(c.db, c.config)
	c.jwtService = services.NewJWTService(c.config, c.db)

	c.residentService = services.NewResidentService(c.db, c.config, c.storage)
	c.photoService = services.NewPhotoService(c.db, c.config, c.storage)
	c.adminService = services.NewAdminService(c.db, c.config)
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "storage":
		return c.storage
	case "jwt":
		return c.jwtService
	case "user":
		return c.userService
	case "redis":
		return c.redisService
	case "resident":
		return c.residentService
	case "photo":
		return c.photoService
	case "admin":
		return c.adminService
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// GetConfig 获取配置
func (c *ServiceContainer) GetConfig() *config.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// GetStorage 获取文件存储
func (c *ServiceContainer) GetStorage() storage.FileStorage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.storage
}
