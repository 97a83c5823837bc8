package models

import (
	"fmt"
	"path"
	"time"

	"gorm.io/gorm"
)

// PhotoUploadDir 照片存储目录前缀
const PhotoUploadDir = "residents"

// Photo 住户照片，每个住户最多只有一张主照片
type Photo struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ResidentID uint      `gorm:"not null;index:idx_photos_resident_primary,priority:1" json:"resident"`
	Image      string    `gorm:"type:varchar(255);not null" json:"image"` // 存储中的文件名
	IsPrimary  bool      `gorm:"not null;default:false;index:idx_photos_resident_primary,priority:2" json:"is_primary"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	Resident *Resident `gorm:"foreignKey:ResidentID" json:"-"`
}

// UploadPath 根据上传时间生成存储路径: residents/YYYY/MM/<filename>
func UploadPath(uploadedAt time.Time, filename string) string {
	return path.Join(PhotoUploadDir, fmt.Sprintf("%04d", uploadedAt.Year()), fmt.Sprintf("%02d", int(uploadedAt.Month())), filename)
}

// AfterSave 是一个GORM钩子：保存主照片后降级同一住户的其他主照片
// 钩子与保存语句运行在同一个事务中
func (p *Photo) AfterSave(tx *gorm.DB) error {
	if !p.IsPrimary || p.ID == 0 {
		return nil
	}
	return DemoteOtherPrimaries(tx, p.ResidentID, p.ID)
}

// DemoteOtherPrimaries 将住户除 keepID 以外的所有主照片降级
// 调用方负责提供事务
func DemoteOtherPrimaries(tx *gorm.DB, residentID, keepID uint) error {
	return tx.Session(&gorm.Session{SkipHooks: true}).
		Model(&Photo{}).
		Where("resident_id = ? AND id <> ? AND is_primary = ?", residentID, keepID, true).
		Update("is_primary", false).Error
}

// CountPrimaries 统计住户当前的主照片数量
func CountPrimaries(tx *gorm.DB, residentID uint) (int64, error) {
	var count int64
	err := tx.Model(&Photo{}).Where("resident_id = ? AND is_primary = ?", residentID, true).Count(&count).Error
	return count, err
}
