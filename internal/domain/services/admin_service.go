package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"gatepulse-http-service/internal/domain/models"
	"gatepulse-http-service/internal/infrastructure/config"
	"gatepulse-http-service/pkg/logger"
)

// InterfaceAdminService defines the admin account service interface
type InterfaceAdminService interface {
	GetAdminByUsername(username string) (*models.Admin, error)
	CreateAdmin(admin *models.Admin, plainPassword string) error
	EnsureDefaultAdmin() error
}

// AdminService 提供管理员账户相关的服务
type AdminService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAdminService 创建一个新的管理员服务
func NewAdminService(db *gorm.DB, cfg *config.Config) InterfaceAdminService {
	return &AdminService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAdminByUsername 根据用户名获取管理员
func (s *AdminService) GetAdminByUsername(username string) (*models.Admin, error) {
	var admin models.Admin
	if err := s.DB.Where("username = ?", username).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("管理员不存在")
		}
		return nil, err
	}
	return &admin, nil
}

// 2 CreateAdmin 创建管理员，密码以bcrypt散列存储
func (s *AdminService) CreateAdmin(admin *models.Admin, plainPassword string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin.Password = string(hashed)
	if admin.Role == "" {
		admin.Role = "admin"
	}
	return s.DB.Create(admin).Error
}

// 3 EnsureDefaultAdmin 确保系统中至少存在一个管理员账户
func (s *AdminService) EnsureDefaultAdmin() error {
	var count int64
	if err := s.DB.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := &models.Admin{
		Username: "admin",
		Role:     "admin",
		Status:   "active",
	}
	if err := s.CreateAdmin(admin, s.Config.DefaultAdminPassword); err != nil {
		return err
	}

	logger.Info("已创建默认管理员账户: admin")
	return nil
}
