package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resident-directory-service/internal/domain/models"
	"resident-directory-service/internal/infrastructure/config"
	"resident-directory-service/internal/infrastructure/storage"
	"resident-directory-service/pkg/logger"
)

// InterfaceResidentService defines the resident service interface
type InterfaceResidentService interface {
	ListResidents(ctx context.Context, filter ResidentFilter, page models.PaginationQuery) ([]models.Resident, int64, error)
	GetResidentByID(ctx context.Context, id uint) (*models.Resident, error)
	CreateResident(ctx context.Context, resident *models.Resident) error
	UpdateResident(ctx context.Context, id uint, updates map[string]interface{}) (*models.Resident, error)
	DeleteResident(ctx context.Context, id uint) error
}

// ResidentFilter 居民列表过滤条件，零值表示不限制
type ResidentFilter struct {
	Query     string // 对姓名、门牌、电话、邮箱做不区分大小写的包含匹配，原样使用不去空白
	Apartment string // 精确匹配
	IsActive  *bool
}

// ResidentService 提供居民相关的服务
type ResidentService struct {
	DB      *gorm.DB
	Config  *config.Config
	Storage storage.FileStorage
}

// NewResidentService 创建一个新的居民服务
func NewResidentService(db *gorm.DB, cfg *config.Config, store storage.FileStorage) InterfaceResidentService {
	return &ResidentService{
		DB:      db,
		Config:  cfg,
		Storage: store,
	}
}

var searchColumns = []string{"first_name", "last_name", "apartment", "phone", "email"}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ApplyResidentFilter 将过滤条件应用到查询上
func ApplyResidentFilter(db *gorm.DB, filter ResidentFilter) *gorm.DB {
	if filter.Query != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(filter.Query)) + "%"
		conds := make([]string, len(searchColumns))
		args := make([]interface{}, len(searchColumns))
		for i, col := range searchColumns {
			conds[i] = "LOWER(" + col + ") LIKE ? ESCAPE '!'"
			args[i] = pattern
		}
		db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	if filter.Apartment != "" {
		// MySQL 默认排序规则不区分大小写
		if db.Dialector != nil && db.Dialector.Name() == "mysql" {
			db = db.Where("BINARY apartment = ?", filter.Apartment)
		} else {
			db = db.Where("apartment = ?", filter.Apartment)
		}
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	return db
}

func preloadPhotos(db *gorm.DB) *gorm.DB {
	return db.Preload("Photos", func(db *gorm.DB) *gorm.DB {
		return db.Order("uploaded_at DESC, id DESC")
	})
}

// 1 ListResidents 按条件分页获取居民，排序固定为 姓、名、ID
func (s *ResidentService) ListResidents(ctx context.Context, filter ResidentFilter, page models.PaginationQuery) ([]models.Resident, int64, error) {
	if page.Page < 1 || page.PageSize < 1 {
		return nil, 0, ErrInvalidPage
	}

	query := func() *gorm.DB {
		return ApplyResidentFilter(s.DB.WithContext(ctx).Model(&models.Resident{}), filter)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page.Page > models.NewPaginationResult(total, page.Page, page.PageSize).TotalPages {
		return nil, total, ErrInvalidPage
	}

	residents := []models.Resident{}
	err := preloadPhotos(query()).
		Order("last_name ASC, first_name ASC, id ASC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&residents).Error
	if err != nil {
		return nil, 0, err
	}
	return residents, total, nil
}

// 2 GetResidentByID 根据ID获取居民，照片按上传时间倒序
func (s *ResidentService) GetResidentByID(ctx context.Context, id uint) (*models.Resident, error) {
	var resident models.Resident
	if err := preloadPhotos(s.DB.WithContext(ctx)).First(&resident, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, err
	}
	return &resident, nil
}

// 3 CreateResident 创建新居民
func (s *ResidentService) CreateResident(ctx context.Context, resident *models.Resident) error {
	// 照片只能通过上传接口添加
	resident.Photos = nil
	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(resident).Error; err != nil {
		return fmt.Errorf("创建居民失败: %w", err)
	}
	resident.Photos = []models.Photo{}
	return nil
}

// 4 UpdateResident 更新居民信息；updates 中的零值也会被写入
func (s *ResidentService) UpdateResident(ctx context.Context, id uint, updates map[string]interface{}) (*models.Resident, error) {
	db := s.DB.WithContext(ctx)

	var resident models.Resident
	if err := db.First(&resident, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, err
	}

	if len(updates) > 0 {
		if err := db.Model(&resident).Omit(clause.Associations).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("更新居民失败: %w", err)
		}
	}

	return s.GetResidentByID(ctx, id)
}

// 5 DeleteResident 删除居民及其全部照片；文件在事务提交后尽力删除
func (s *ResidentService) DeleteResident(ctx context.Context, id uint) error {
	var images []string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockResident(tx, id); err != nil {
			return err
		}
		if err := tx.Model(&models.Photo{}).Where("resident_id = ?", id).Pluck("image", &images).Error; err != nil {
			return err
		}
		if err := tx.Where("resident_id = ?", id).Delete(&models.Photo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Resident{}, id).Error
	})
	if err != nil {
		return err
	}

	removeBlobs(ctx, s.Storage, images)
	return nil
}

// lockResident 在事务中锁定居民行，串行化同一居民的照片写操作
// sqlite 不支持行锁，写事务本身已串行
func lockResident(tx *gorm.DB, id uint) (*models.Resident, error) {
	var resident models.Resident
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&resident, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResidentNotFound
		}
		return nil, err
	}
	return &resident, nil
}

func removeBlobs(ctx context.Context, store storage.FileStorage, names []string) {
	if store == nil {
		return
	}
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := store.Delete(ctx, name); err != nil {
			logger.Warning("删除照片文件 %s 失败: %v", name, err)
		}
	}
}
