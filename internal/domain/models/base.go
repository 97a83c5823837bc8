package models

import "time"

// BaseModel 公共主键与时间戳字段
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllModels 返回需要自动迁移的全部模型，顺序即建表顺序
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Resident{},
		&Photo{},
	}
}
