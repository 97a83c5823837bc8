package serializers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"resident-directory-service/internal/domain/models"
	"resident-directory-service/internal/infrastructure/storage"
	"resident-directory-service/pkg/logger"
)

const dateLayout = "2006-01-02"

// PhotoResponse 照片的接口表示
type PhotoResponse struct {
	ID         uint      `json:"id" example:"1"`
	Resident   uint      `json:"resident" example:"1"`
	Image      string    `json:"image" example:"residents/2024/05/portrait.jpg"`
	ImageURL   *string   `json:"image_url" example:"http://localhost:8080/media/residents/2024/05/portrait.jpg"`
	IsPrimary  bool      `json:"is_primary" example:"true"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ResidentResponse 居民的接口表示，包含主照片地址和全部照片
type ResidentResponse struct {
	ID              uint            `json:"id" example:"1"`
	FirstName       string          `json:"first_name" example:"Ann"`
	LastName        string          `json:"last_name" example:"Lee"`
	Apartment       string          `json:"apartment" example:"4B"`
	Phone           string          `json:"phone" example:"555-0100"`
	Email           string          `json:"email" example:"ann@example.com"`
	DOB             *string         `json:"dob" example:"1990-04-01"`
	Notes           string          `json:"notes" example:""`
	IsActive        bool            `json:"is_active" example:"true"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	PrimaryPhotoURL *string         `json:"primary_photo_url"`
	Photos          []PhotoResponse `json:"photos"`
}

// ResidentPage 分页后的居民列表
type ResidentPage struct {
	models.PaginationResult
	Next     *string            `json:"next"`
	Previous *string            `json:"previous"`
	Results  []ResidentResponse `json:"results"`
}

// Serializer 绑定请求上下文与文件存储
type Serializer struct {
	ctx   *gin.Context
	store storage.FileStorage
}

// New 创建序列化器，c 用于生成绝对地址
func New(c *gin.Context, store storage.FileStorage) *Serializer {
	return &Serializer{ctx: c, store: store}
}

// Photo 序列化单张照片
func (s *Serializer) Photo(p *models.Photo) PhotoResponse {
	return PhotoResponse{
		ID:         p.ID,
		Resident:   p.ResidentID,
		Image:      p.Image,
		ImageURL:   s.imageURL(p.Image),
		IsPrimary:  p.IsPrimary,
		UploadedAt: p.UploadedAt,
	}
}

// Photos 序列化照片列表
func (s *Serializer) Photos(photos []models.Photo) []PhotoResponse {
	out := make([]PhotoResponse, len(photos))
	for i := range photos {
		out[i] = s.Photo(&photos[i])
	}
	return out
}

// Resident 序列化居民
func (s *Serializer) Resident(r *models.Resident) ResidentResponse {
	resp := ResidentResponse{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Apartment: r.Apartment,
		Phone:     r.Phone,
		Email:     r.Email,
		Notes:     r.Notes,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Photos:    s.Photos(r.Photos),
	}
	if r.DOB != nil {
		dob := r.DOB.Format(dateLayout)
		resp.DOB = &dob
	}
	if primary := r.PrimaryPhoto(); primary != nil {
		resp.PrimaryPhotoURL = s.imageURL(primary.Image)
	}
	return resp
}

// ResidentPage 序列化一页居民，next/previous 为绝对地址
func (s *Serializer) ResidentPage(residents []models.Resident, meta models.PaginationResult) ResidentPage {
	page := ResidentPage{
		PaginationResult: meta,
		Results:          make([]ResidentResponse, len(residents)),
	}
	for i := range residents {
		page.Results[i] = s.Resident(&residents[i])
	}
	if meta.Page < meta.TotalPages {
		next := PageURL(s.ctx, meta.Page+1)
		page.Next = &next
	}
	if meta.Page > 1 {
		prev := PageURL(s.ctx, meta.Page-1)
		page.Previous = &prev
	}
	return page
}

func (s *Serializer) imageURL(name string) *string {
	if name == "" || s.store == nil {
		return nil
	}
	location, err := s.store.URL(s.requestContext(), name)
	if err != nil {
		logger.Warning("生成照片地址失败 %s: %v", name, err)
		return nil
	}
	abs := AbsoluteURL(s.ctx, location)
	return &abs
}

func (s *Serializer) requestContext() context.Context {
	if s.ctx == nil || s.ctx.Request == nil {
		return context.Background()
	}
	return s.ctx.Request.Context()
}
