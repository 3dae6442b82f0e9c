package container

import (
	"sync"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"gatepulse-http-service/internal/domain/services"
	"gatepulse-http-service/internal/infrastructure/config"
	"gatepulse-http-service/pkg/logger"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	jwtService     services.InterfaceJWTService
	redisService   services.InterfaceRedisService
	storageService services.InterfaceStorageService

	// 闸机事件服务
	gateEventService services.InterfaceGateEventService

	// 业务服务
	adminService     services.InterfaceAdminService
	visitService     services.InterfaceVisitService
	dashboardService services.InterfaceDashboardService

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器
func NewServiceContainer(db *gorm.DB, cfg *config.Config) *ServiceContainer {
	if db == nil {
		panic("数据库连接为空")
	}

	if cfg == nil {
		panic("配置为空")
	}

	container := &ServiceContainer{
		db:     db,
		config: cfg,
	}
	container.initializeServices()
	return container
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices() {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 初始化基础服务
	c.jwtService = services.NewJWTService(c.config, c.db)
	c.storageService = services.NewStorageService(c.config)

	// 初始化Redis服务，连接不可用时退化为无缓存
	redisService := services.NewRedisService(c.config)
	if err := redisService.Ping(); err != nil {
		logger.Warning("Redis连接测试失败: %v，将不使用Redis缓存", err)
		redisService = nil
	}
	c.redisService = redisService

	// 初始化闸机事件服务，未配置broker时为nil
	c.gateEventService = services.NewGateEventService(c.config)
	if c.gateEventService != nil {
		if err := c.gateEventService.Connect(); err != nil {
			logger.Warning("MQTT服务连接失败: %v", err)
		}
	}

	// 初始化业务服务
	c.adminService = services.NewAdminService(c.db, c.config)
	c.visitService = services.NewVisitService(c.db, c.config, c.storageService, c.gateEventService)
	c.dashboardService = services.NewDashboardService(c.db, c.config, c.redisService)
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
	case "jwt":
		return c.jwtService
	case "redis":
		return c.redisService
	case "storage":
		return c.storageService
	case "gateEvent":
		return c.gateEventService
	case "admin":
		return c.adminService
	case "visit":
		return c.visitService
	case "dashboard":
		return c.dashboardService
	default:
		return nil
	}
}
