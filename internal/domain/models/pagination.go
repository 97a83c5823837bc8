package models

// PaginationQuery 分页请求参数
type PaginationQuery struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

const (
	// DefaultPageSize 默认每页条数
	DefaultPageSize = 10
	// MaxPageSize 每页最大条数
	MaxPageSize = 100
)

// PaginationResult 分页结果元数据
type PaginationResult struct {
	Count      int64 `json:"count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginationResult 创建一个新的分页结果对象
func NewPaginationResult(total int64, page, pageSize int) PaginationResult {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}
	return PaginationResult{
		Count:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Offset 返回当前页的偏移量
func (q PaginationQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}
