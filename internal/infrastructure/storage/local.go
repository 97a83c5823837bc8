package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage 将文件保存在本地目录下，开发环境由 /media/ 路由提供访问
type LocalStorage struct {
	root    string
	baseURL string
}

// NewLocalStorage 创建本地存储，root 不存在时自动创建
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStorage{root: root, baseURL: baseURL}, nil
}

// Root 返回存储根目录
func (s *LocalStorage) Root() string {
	return s.root
}

// BaseURL 返回访问前缀
func (s *LocalStorage) BaseURL() string {
	return s.baseURL
}

func (s *LocalStorage) fullPath(name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", fmt.Errorf("invalid storage name %q", name)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Save 写入文件
func (s *LocalStorage) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	name, err := availableName(ctx, s, name)
	if err != nil {
		return "", err
	}
	full, err := s.fullPath(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("close file: %w", err)
	}
	return name, nil
}

// Open 打开文件
func (s *LocalStorage) Open(_ context.Context, name string) (io.ReadCloser, error) {
	full, err := s.fullPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// Delete 删除文件，文件不存在时不报错
func (s *LocalStorage) Delete(_ context.Context, name string) error {
	full, err := s.fullPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exists 判断文件是否存在
func (s *LocalStorage) Exists(_ context.Context, name string) (bool, error) {
	full, err := s.fullPath(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// URL 返回相对访问路径，例如 /media/residents/2024/05/a.jpg
func (s *LocalStorage) URL(_ context.Context, name string) (string, error) {
	return s.baseURL + strings.TrimPrefix(name, "/"), nil
}
