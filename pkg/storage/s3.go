package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type s3Storage struct {
	client *s3.S3
	cfg    Config
}

// NewS3 创建S3客户端；配置了Endpoint时按路径风格访问，兼容MinIO等S3兼容存储
func NewS3(cfg Config) (Storage, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsConfig := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		awsConfig.DisableSSL = aws.Bool(!cfg.UseSSL)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("创建AWS会话失败: %w", err)
	}
	return &s3Storage{client: s3.New(sess), cfg: cfg}, nil
}

func (s *s3Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	// PutObject需要io.ReadSeeker，multipart文件本身就满足
	body, ok := r.(io.ReadSeeker)
	if !ok {
		return "", fmt.Errorf("S3上传需要可Seek的数据源")
	}
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("上传对象到S3失败: %w", err)
	}
	if s.cfg.PublicURL == "" && s.cfg.Endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, aws.StringValue(s.client.Config.Region), key), nil
	}
	return publicObjectURL(s.cfg, key), nil
}

func (s *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("从S3删除对象失败: %w", err)
	}
	return nil
}
