package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "resident-directory-service/docs"
	"resident-directory-service/internal/app/controllers"
	"resident-directory-service/internal/app/middleware"
	"resident-directory-service/internal/domain/policy"
	"resident-directory-service/internal/domain/services/container"
	"resident-directory-service/internal/infrastructure/storage"
	"resident-directory-service/pkg/logger"
)

// SetupRouter 初始化并返回配置好的路由
// limiter 为 nil 时不做限流
func SetupRouter(container *container.ServiceContainer, limiter middleware.Limiter) *gin.Engine {
	cfg := container.GetConfig()

	r := gin.New()
	// ClientIP 只采信受信任代理的转发头，限流按真实来源计数
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warning("受信任代理配置无效，不信任任何代理: %v", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.TrustedProxies(cfg.TrustedProxies))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())

	if cfg.MetricsEnabled {
		metrics := middleware.NewMetrics()
		r.Use(metrics.Middleware())
		r.GET("/metrics", metrics.Handler())
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 添加 Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/docs/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/swagger/index.html")
	})

	// 本地存储的照片只在调试模式下由本服务提供
	if local, ok := container.GetStorage().(*storage.LocalStorage); ok && cfg.Debug {
		if prefix := strings.TrimSuffix(local.BaseURL(), "/"); strings.HasPrefix(prefix, "/") && prefix != "" {
			r.Static(prefix, local.Root())
		}
	}

	registerRoutes(r, container, limiter)
	return r
}

// registerRoutes 配置所有API路由
func registerRoutes(r *gin.Engine, container *container.ServiceContainer, limiter middleware.Limiter) {
	api := r.Group("/api")
	if limiter != nil {
		api.Use(middleware.RateLimiter(limiter, nil))
	}
	api.Use(middleware.Authenticate(container))

	registerPublicRoutes(api, container)
	registerResidentRoutes(api, container)
	registerPhotoRoutes(api, container)
	registerAdminRoutes(api, container)
}

// registerPublicRoutes 注册无需认证的路由
func registerPublicRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	api.GET("/health/", middleware.Authorize(policy.ActionHealth), controllers.HandleHealthFunc("ping"))

	authGroup := api.Group("/auth")
	authGroup.POST("/register/", middleware.Authorize(policy.ActionRegister), controllers.HandleJWTFunc(container, "register"))
	authGroup.POST("/login/", middleware.Authorize(policy.ActionObtainToken), controllers.HandleJWTFunc(container, "login"))
	authGroup.POST("/refresh/", middleware.Authorize(policy.ActionObtainToken), controllers.HandleJWTFunc(container, "refresh"))
}

// registerResidentRoutes 居民路由
func registerResidentRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	residentGroup := api.Group("/residents")
	residentGroup.GET("/", middleware.Authorize(policy.ActionListResidents), controllers.HandleResidentFunc(container, "getResidents"))
	residentGroup.POST("/", middleware.Authorize(policy.ActionCreateResident), controllers.HandleResidentFunc(container, "createResident"))
	residentGroup.GET("/:id/", middleware.Authorize(policy.ActionViewResident), controllers.HandleResidentFunc(container, "getResident"))
	residentGroup.PUT("/:id/", middleware.Authorize(policy.ActionUpdateResident), controllers.HandleResidentFunc(container, "updateResident"))
	residentGroup.PATCH("/:id/", middleware.Authorize(policy.ActionUpdateResident), controllers.HandleResidentFunc(container, "patchResident"))
	residentGroup.DELETE("/:id/", middleware.Authorize(policy.ActionDeleteResident), controllers.HandleResidentFunc(container, "deleteResident"))

	residentGroup.GET("/:id/photos/", middleware.Authorize(policy.ActionListPhotos), controllers.HandlePhotoFunc(container, "getResidentPhotos"))
	residentGroup.POST("/:id/photos/", middleware.Authorize(policy.ActionUploadPhoto), controllers.HandlePhotoFunc(container, "uploadPhoto"))
}

// registerPhotoRoutes 照片路由
func registerPhotoRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	photoGroup := api.Group("/photos")
	photoGroup.GET("/:id/", middleware.Authorize(policy.ActionViewPhoto), controllers.HandlePhotoFunc(container, "getPhoto"))
	photoGroup.PATCH("/:id/", middleware.Authorize(policy.ActionUpdatePhoto), controllers.HandlePhotoFunc(container, "updatePhoto"))
	photoGroup.DELETE("/:id/", middleware.Authorize(policy.ActionDeletePhoto), controllers.HandlePhotoFunc(container, "deletePhoto"))
	photoGroup.POST("/:id/set_primary/", middleware.Authorize(policy.ActionSetPrimary), controllers.HandlePhotoFunc(container, "setPrimary"))
}

// registerAdminRoutes 员工管理路由
func registerAdminRoutes(api *gin.RouterGroup, container *container.ServiceContainer) {
	adminGroup := api.Group("/admin")
	adminGroup.GET("/summary/", middleware.Authorize(policy.ActionAdminSummary), controllers.HandleAdminFunc(container, "getSummary"))
}
