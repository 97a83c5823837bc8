package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"resident-directory-service/internal/domain/models"
	"resident-directory-service/internal/infrastructure/config"
)

// InterfaceUserService 定义账户服务接口
type InterfaceUserService interface {
	Register(ctx context.Context, username, password, email string) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	CreateStaff(ctx context.Context, username, password, email string) (*models.User, error)
}

// UserService 提供账户相关的服务
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewUserService 创建一个新的账户服务
func NewUserService(db *gorm.DB, cfg *config.Config) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
	}
}

// 1 Register 注册普通账户，用户名重复时返回 ErrUsernameTaken
func (s *UserService) Register(ctx context.Context, username, password, email string) (*models.User, error) {
	db := s.DB.WithContext(ctx)

	taken, err := s.usernameExists(db, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	user := &models.User{
		Username: username,
		Email:    email,
		IsActive: true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := db.Create(user).Error; err != nil {
		// 并发注册时由唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		if taken, checkErr := s.usernameExists(db, username); checkErr == nil && taken {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

// 2 Authenticate 校验用户名和密码
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 与密码错误返回相同的错误
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return &user, nil
}

// 3 GetUserByID 根据ID获取账户
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// 4 CreateStaff 创建员工账户；用户已存在时提升为员工并重置密码
func (s *UserService) CreateStaff(ctx context.Context, username, password, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("username = ?", username).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = models.User{Username: username, Email: email, IsStaff: true, IsActive: true}
			if err := user.SetPassword(password); err != nil {
				return err
			}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}
		if err := user.SetPassword(password); err != nil {
			return err
		}
		user.IsStaff = true
		user.IsActive = true
		if email != "" {
			user.Email = email
		}
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, fmt.Errorf("创建员工账户失败: %w", err)
	}
	return &user, nil
}

func (s *UserService) usernameExists(db *gorm.DB, username string) (bool, error) {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
