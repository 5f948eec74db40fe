// Package storage 保存上传的帖子图片，支持本地磁盘与 S3
package storage

import (
	"context"
	"fmt"
	"io"

	"yatube/internal/config"
)

// Storage 路径一律使用 "/" 分隔的相对路径，例如 posts/<uuid>.jpg
type Storage interface {
	Save(ctx context.Context, path, contentType string, reader io.Reader) (int64, error)
	Delete(ctx context.Context, path string) error
	// URL 返回客户端可访问的地址
	URL(path string) string
}

// New 按配置创建存储后端
func New(cfg config.Storage) (Storage, error) {
	switch cfg.Type {
	case "disk":
		return NewDiskStorage(cfg.Path, "/media/"), nil
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", cfg.Type)
	}
}
