package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"seccode_backend/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService 实验/项目起始文件压缩包的对象存储（MinIO）
type StorageService struct {
	client *minio.Client
	bucket string
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	if cfg.Storage.MinioEndpoint == "" {
		// 未配置对象存储时服务可照常运行，只是压缩包相关接口不可用
		return &StorageService{}, nil
	}

	client, err := minio.New(cfg.Storage.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.MinioAccessID, cfg.Storage.MinioSecret, ""),
		Secure: cfg.Storage.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}

	return &StorageService{
		client: client,
		bucket: cfg.Storage.MinioBucket,
	}, nil
}

func (s *StorageService) Available() bool {
	return s.client != nil
}

// UploadArchive 上传起始文件压缩包，返回对象键
func (s *StorageService) UploadArchive(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	if !s.Available() {
		return fmt.Errorf("object storage is not configured")
	}
	_, err := s.client.PutObject(ctx, s.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// PresignedURL 生成限时下载链接
func (s *StorageService) PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	if !s.Available() {
		return "", fmt.Errorf("object storage is not configured")
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *StorageService) DeleteObject(ctx context.Context, objectKey string) error {
	if !s.Available() {
		return fmt.Errorf("object storage is not configured")
	}
	return s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}
