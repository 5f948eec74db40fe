package pkg

import "github.com/gofrs/uuid"

// NewID 随机 UUIDv4 字符串，用于请求 ID、jti 与媒体文件名
func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}
