package services

import (
	"context"

	"gorm.io/gorm"

	"resident-directory-service/internal/domain/models"
	"resident-directory-service/internal/infrastructure/config"
)

// InterfaceAdminService 员工统计服务接口
type InterfaceAdminService interface {
	GetSummary(ctx context.Context) (*Summary, error)
}

// Summary 居民与照片的数量统计
type Summary struct {
	Residents ResidentCounts `json:"residents"`
	Photos    PhotoCounts    `json:"photos"`
}

// ResidentCounts 居民数量
type ResidentCounts struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

// PhotoCounts 照片数量
type PhotoCounts struct {
	Total int64 `json:"total"`
}

// AdminService 提供管理统计相关的服务
type AdminService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewAdminService 创建一个新的管理统计服务
func NewAdminService(db *gorm.DB, cfg *config.Config) InterfaceAdminService {
	return &AdminService{
		DB:     db,
		Config: cfg,
	}
}

// GetSummary 统计居民总数、启用/停用数量以及照片总数
func (s *AdminService) GetSummary(ctx context.Context) (*Summary, error) {
	db := s.DB.WithContext(ctx)
	summary := &Summary{}

	if err := db.Model(&models.Resident{}).Count(&summary.Residents.Total).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Resident{}).Where("is_active = ?", true).Count(&summary.Residents.Active).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Resident{}).Where("is_active = ?", false).Count(&summary.Residents.Inactive).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Photo{}).Count(&summary.Photos.Total).Error; err != nil {
		return nil, err
	}
	return summary, nil
}
