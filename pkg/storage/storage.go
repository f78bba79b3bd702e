package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Storage 对象存储，用来存自定义缩略图
type Storage interface {
	// Put 上传对象并返回可公开访问的URL
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// Delete 删除对象，对象不存在不算错误
	Delete(ctx context.Context, key string) error
}

type Config struct {
	Driver    string // minio | s3 | memory
	Endpoint  string
	PublicURL string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// New 根据Driver创建对应的存储实现
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "minio", "":
		return NewMinio(ctx, cfg)
	case "s3":
		return NewS3(cfg)
	case "memory":
		return NewMemory(cfg.PublicURL), nil
	default:
		return nil, fmt.Errorf("不支持的存储驱动: %s", cfg.Driver)
	}
}

// publicObjectURL 优先使用配置的公网地址，否则按endpoint/bucket/key拼接
func publicObjectURL(cfg Config, key string) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/") + "/" + key
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "http://"), "https://")
	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, cfg.Bucket, key)
}
