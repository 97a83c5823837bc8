package models

import (
	"fmt"
	"time"
)

// Resident represents one directory entry (a person living in an apartment)
type Resident struct {
	BaseModel
	FirstName string     `gorm:"type:varchar(120);not null;index:idx_residents_name,priority:2" json:"first_name"`
	LastName  string     `gorm:"type:varchar(120);not null;index:idx_residents_name,priority:1" json:"last_name"`
	Apartment string     `gorm:"type:varchar(50);not null;index" json:"apartment"`
	Phone     string     `gorm:"type:varchar(50);not null" json:"phone"`
	Email     string     `gorm:"type:varchar(254);not null;index" json:"email"` // 不要求唯一
	DOB       *time.Time `gorm:"column:dob;type:date" json:"dob"`
	Notes     string     `gorm:"type:text;not null;default:''" json:"notes"`
	IsActive  bool       `gorm:"not null" json:"is_active"` // 默认值由服务层设置，避免 GORM 忽略 false

	// Relations
	Photos []Photo `gorm:"foreignKey:ResidentID;constraint:OnDelete:CASCADE" json:"photos,omitempty"`
}

// PrimaryPhoto 返回被标记为主照片的照片，没有则返回 nil
// Photos 需要按上传时间倒序预加载
func (r *Resident) PrimaryPhoto() *Photo {
	for i := range r.Photos {
		if r.Photos[i].IsPrimary {
			return &r.Photos[i]
		}
	}
	return nil
}

func (r *Resident) String() string {
	return fmt.Sprintf("%s %s (Apt %s)", r.FirstName, r.LastName, r.Apartment)
}
