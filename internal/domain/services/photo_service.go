package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resident-directory-service/internal/domain/models"
	"resident-directory-service/internal/infrastructure/config"
	"resident-directory-service/internal/infrastructure/storage"
	"resident-directory-service/pkg/logger"
)

// InterfacePhotoService 定义照片服务接口
type InterfacePhotoService interface {
	ListPhotos(ctx context.Context, residentID uint) ([]models.Photo, error)
	UploadPhoto(ctx context.Context, residentID uint, upload PhotoUpload) (*models.Photo, error)
	GetPhotoByID(ctx context.Context, id uint) (*models.Photo, error)
	UpdatePhoto(ctx context.Context, id uint, isPrimary *bool) (*models.Photo, error)
	DeletePhoto(ctx context.Context, id uint) error
	SetPrimary(ctx context.Context, id uint) (*models.Photo, error)
}

// PhotoUpload 上传的照片文件
type PhotoUpload struct {
	Filename  string
	Size      int64
	Content   io.Reader
	IsPrimary bool
}

// PhotoService 提供照片相关的服务
type PhotoService struct {
	DB      *gorm.DB
	Config  *config.Config
	Storage storage.FileStorage
	now     func() time.Time
}

// NewPhotoService 创建一个新的照片服务
func NewPhotoService(db *gorm.DB, cfg *config.Config, store storage.FileStorage) InterfacePhotoService {
	return &PhotoService{
		DB:      db,
		Config:  cfg,
		Storage: store,
		now:     time.Now,
	}
}

// 1 ListPhotos 获取住户的全部照片，按上传时间倒序
func (s *PhotoService) ListPhotos(ctx context.Context, residentID uint) ([]models.Photo, error) {
	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Resident{}).Where("id = ?", residentID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrResidentNotFound
	}

	photos := []models.Photo{}
	if err := db.Where("resident_id = ?", residentID).Order("uploaded_at DESC, id DESC").Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

// 2 UploadPhoto 校验并保存图片，创建照片记录
// 设为主照片时由 Photo 的 AfterSave 钩子在同一事务内降级其他主照片
func (s *PhotoService) UploadPhoto(ctx context.Context, residentID uint, upload PhotoUpload) (*models.Photo, error) {
	data, err := s.readImage(upload)
	if err != nil {
		return nil, err
	}

	uploadedAt := s.now()
	name := models.UploadPath(uploadedAt, storage.ValidFilename(upload.Filename))

	var saved string
	photo := &models.Photo{ResidentID: residentID, IsPrimary: upload.IsPrimary, UploadedAt: uploadedAt}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockResident(tx, residentID); err != nil {
			return err
		}
		if upload.IsPrimary {
			s.notePrimaryConflict(tx, residentID, 0)
		}

		saved, err = s.Storage.Save(ctx, name, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("保存照片文件失败: %w", err)
		}
		photo.Image = saved
		return tx.Create(photo).Error
	})
	if err != nil {
		if saved != "" {
			removeBlobs(context.Background(), s.Storage, []string{saved})
		}
		return nil, err
	}
	return photo, nil
}

// 3 GetPhotoByID 根据ID获取照片
func (s *PhotoService) GetPhotoByID(ctx context.Context, id uint) (*models.Photo, error) {
	return findPhoto(s.DB.WithContext(ctx), id)
}

// 4 UpdatePhoto 更新照片的主照片标记，isPrimary 为 nil 时不做修改
func (s *PhotoService) UpdatePhoto(ctx context.Context, id uint, isPrimary *bool) (*models.Photo, error) {
	var photo *models.Photo
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if photo, err = s.lockPhoto(tx, id); err != nil {
			return err
		}
		if isPrimary == nil {
			return nil
		}
		if *isPrimary {
			s.notePrimaryConflict(tx, photo.ResidentID, photo.ID)
		}
		photo.IsPrimary = *isPrimary
		return tx.Save(photo).Error
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// 5 DeletePhoto 删除照片记录，文件在事务提交后尽力删除
func (s *PhotoService) DeletePhoto(ctx context.Context, id uint) error {
	var image string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		photo, err := s.lockPhoto(tx, id)
		if err != nil {
			return err
		}
		image = photo.Image
		return tx.Delete(photo).Error
	})
	if err != nil {
		return err
	}

	removeBlobs(ctx, s.Storage, []string{image})
	return nil
}

// 6 SetPrimary 将照片设为住户的主照片，重复调用结果不变
func (s *PhotoService) SetPrimary(ctx context.Context, id uint) (*models.Photo, error) {
	var photo *models.Photo
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if photo, err = s.lockPhoto(tx, id); err != nil {
			return err
		}
		return promotePhoto(tx, photo)
	})
	if err != nil {
		return nil, err
	}
	return photo, nil
}

// promotePhoto 降级其他主照片并无条件提升 photo
// 不依赖 photo.IsPrimary 的读取值，快照可能已经过期
func promotePhoto(tx *gorm.DB, photo *models.Photo) error {
	if err := models.DemoteOtherPrimaries(tx, photo.ResidentID, photo.ID); err != nil {
		return err
	}
	err := tx.Session(&gorm.Session{SkipHooks: true}).
		Model(&models.Photo{}).
		Where("id = ?", photo.ID).
		Update("is_primary", true).Error
	if err != nil {
		return err
	}
	photo.IsPrimary = true
	return nil
}

// lockPhoto 读取照片并锁定其所属居民，锁定后用加锁读取拿到最新提交的状态
// MySQL 可重复读下普通读取只会看到事务开始时的快照
func (s *PhotoService) lockPhoto(tx *gorm.DB, id uint) (*models.Photo, error) {
	photo, err := findPhoto(tx, id)
	if err != nil {
		return nil, err
	}
	if _, err := lockResident(tx, photo.ResidentID); err != nil {
		if errors.Is(err, ErrResidentNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return findPhoto(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// notePrimaryConflict 校验阶段只做提示，真正的约束在提交时由降级保证
func (s *PhotoService) notePrimaryConflict(tx *gorm.DB, residentID, photoID uint) {
	var count int64
	err := tx.Model(&models.Photo{}).
		Where("resident_id = ? AND is_primary = ? AND id <> ?", residentID, true, photoID).
		Count(&count).Error
	if err == nil && count > 0 {
		logger.Debug("住户 %d 已有主照片，提交时将被降级", residentID)
	}
}

func (s *PhotoService) readImage(upload PhotoUpload) ([]byte, error) {
	if upload.Content == nil {
		return nil, ErrInvalidImage
	}
	limit := s.Config.MaxUploadSize
	if upload.Size > 0 && limit > 0 && upload.Size > limit {
		return nil, ErrImageTooLarge
	}

	reader := upload.Content
	if limit > 0 {
		reader = io.LimitReader(reader, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, ErrImageTooLarge
	}
	if len(data) == 0 {
		return nil, ErrInvalidImage
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, ErrInvalidImage
	}
	return data, nil
}

func findPhoto(db *gorm.DB, id uint) (*models.Photo, error) {
	var photo models.Photo
	if err := db.First(&photo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}
	return &photo, nil
}
