package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"resident-directory-service/internal/domain/models"
	"resident-directory-service/internal/infrastructure/config"
	"resident-directory-service/pkg/logger"
)

// Migrate 根据迁移模式处理表结构
//   - auto: 只添加新表和新列
//   - drop: 删除并重建所有表（数据会丢失）
//   - none: 跳过迁移
func Migrate(db *gorm.DB, mode string) error {
	switch mode {
	case "none":
		logger.Info("迁移模式为 none，跳过数据库迁移")
		return nil
	case "drop":
		logger.Warning("在 drop 模式下运行，将删除并重建所有表")
		return dropAndRecreateTables(db)
	case "", "auto":
		return autoMigrate(db)
	default:
		return fmt.Errorf("未知的迁移模式: %s", mode)
	}
}

// autoMigrate 自动迁移所有模型（只添加新列和新表）
func autoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("自动迁移失败: %w", err)
	}
	logger.Info("数据库迁移完成")
	return nil
}

// dropAndRecreateTables 删除并重建所有表
func dropAndRecreateTables(db *gorm.DB) error {
	all := models.AllModels()
	// 按依赖逆序删除，先删除引用方
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("删除表失败: %w", err)
		}
	}
	return autoMigrate(db)
}

// EnsureDefaultStaff 确保系统中至少有一个员工账户
func EnsureDefaultStaff(db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.User{}).Where("is_staff = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if cfg.DefaultAdminUsername == "" || cfg.DefaultAdminPassword == "" {
		logger.Warning("未配置默认员工账户，跳过创建")
		return nil
	}

	var existing models.User
	err := db.Where("username = ?", cfg.DefaultAdminUsername).First(&existing).Error
	switch {
	case err == nil:
		if err := db.Model(&existing).Update("is_staff", true).Error; err != nil {
			return err
		}
		logger.Info("已将用户 %s 提升为员工", existing.Username)
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	staff := models.User{
		Username: cfg.DefaultAdminUsername,
		Email:    cfg.DefaultAdminEmail,
		IsStaff:  true,
		IsActive: true,
	}
	if err := staff.SetPassword(cfg.DefaultAdminPassword); err != nil {
		return err
	}
	if err := db.Create(&staff).Error; err != nil {
		return fmt.Errorf("创建默认员工账户失败: %w", err)
	}
	logger.Info("已创建默认员工账户: %s", staff.Username)
	return nil
}
