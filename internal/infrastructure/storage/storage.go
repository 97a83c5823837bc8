// Package storage stores photo blobs behind a backend-neutral interface.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"resident-directory-service/internal/infrastructure/config"
)

// ErrNotFound is returned when the named object does not exist.
var ErrNotFound = errors.New("storage: object not found")

// FileStorage 是照片文件的存储抽象，name 为 "/" 分隔的相对路径
type FileStorage interface {
	// Save 写入内容，返回实际使用的名称（名称冲突时会追加随机后缀）
	Save(ctx context.Context, name string, content io.Reader) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
	// URL 返回可访问的地址；本地存储为相对路径，对象存储可能为绝对地址
	URL(ctx context.Context, name string) (string, error)
}

// New 根据配置创建存储后端
func New(ctx context.Context, cfg *config.Config) (FileStorage, error) {
	switch cfg.StorageBackend {
	case "", "local":
		return NewLocalStorage(cfg.MediaRoot, cfg.MediaURL)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

var invalidNameChars = regexp.MustCompile(`[^-\w.]`)

// ValidFilename 去掉路径部分，空格替换为下划线，并去除其他非法字符
func ValidFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = invalidNameChars.ReplaceAllString(name, "")
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	return name
}

// availableName 返回未被占用的名称，冲突时在扩展名前追加 7 位随机后缀
func availableName(ctx context.Context, s FileStorage, name string) (string, error) {
	candidate := name
	for i := 0; i < 10; i++ {
		exists, err := s.Exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		ext := path.Ext(name)
		candidate = strings.TrimSuffix(name, ext) + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:7] + ext
	}
	return "", fmt.Errorf("no available name for %q", name)
}
