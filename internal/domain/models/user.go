package models

import (
	"golang.org/x/crypto/bcrypt"
)

// User represents an API account; staff users get elevated permissions
type User struct {
	BaseModel
	Username string `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Password string `gorm:"type:varchar(100);not null" json:"-"` // Password not exposed in JSON
	Email    string `gorm:"type:varchar(254)" json:"email"`
	IsStaff  bool   `gorm:"not null;default:false" json:"is_staff"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// SetPassword 对明文密码进行哈希并保存到 Password，调用方负责持久化
func (u *User) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashedPassword
	return nil
}

// CheckPassword 比较明文密码与存储的哈希
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// HashPassword 使用 bcrypt 对密码进行哈希处理
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
