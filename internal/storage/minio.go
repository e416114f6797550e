package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"cv-maker-go/internal/config"
	"cv-maker-go/internal/constants"
	"cv-maker-go/internal/logger"
	"cv-maker-go/internal/tracing"
	"cv-maker-go/internal/types"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// UploadOriginal 归档上传的原始文件，返回对象键
	UploadOriginal(ctx context.Context, md5Hex, ext string, data []byte) (string, error)
	// GetOriginal 读取原始文件
	GetOriginal(ctx context.Context, objectKey string) ([]byte, error)

	// 已保存简历
	UploadSavedCV(ctx context.Context, filename string, data []byte) error
	GetSavedCV(ctx context.Context, filename string) ([]byte, error)
	ListSavedCVs(ctx context.Context) ([]types.SavedCVInfo, error)
}

var _ ObjectStorage = (*MinIO)(nil)

var minioTracer = otel.Tracer("cv-maker-go/storage/minio")

// MinIO 提供对象存储功能
type MinIO struct {
	client         *minio.Client
	cfg            *config.MinIOConfig
	originalBucket string
	savedCVBucket  string
	logger         *zerolog.Logger
}

// NewMinIO 创建MinIO客户端，确保存储桶存在并设置原始文件过期规则
func NewMinIO(cfg *config.MinIOConfig, log *zerolog.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if log == nil {
		log = logger.Component("minio")
	}
	log.Info().Str("endpoint", cfg.Endpoint).
		Str("originals_bucket", cfg.OriginalsBucket).
		Str("saved_bucket", cfg.SavedCVBucket).
		Msg("初始化MinIO客户端")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client:         client,
		cfg:            cfg,
		originalBucket: cfg.OriginalsBucket,
		savedCVBucket:  cfg.SavedCVBucket,
		logger:         log,
	}
	if m.originalBucket == "" {
		m.originalBucket = "cv-originals"
	}
	if m.savedCVBucket == "" {
		m.savedCVBucket = "cv-saved"
	}

	ctx := context.Background()
	for _, bucket := range []string{m.originalBucket, m.savedCVBucket} {
		if err := m.ensureBucketExists(ctx, bucket, cfg.Location); err != nil {
			return nil, err
		}
	}

	if cfg.OriginalFileExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.originalBucket, "expire-originals", cfg.OriginalFileExpireDays); err != nil {
			log.Warn().Err(err).Str("bucket", m.originalBucket).Msg("设置生命周期规则失败")
		}
	}

	log.Info().Str("endpoint", cfg.Endpoint).Msg("MinIO客户端初始化成功")
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(ctx context.Context, bucketName, location string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if exists {
		m.logger.Debug().Str("bucket", bucketName).Msg("存储桶已存在")
		return nil
	}
	if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
	}
	m.logger.Info().Str("bucket", bucketName).Msg("存储桶创建成功")
	return nil
}

// setupBucketLifecycle 为指定存储桶设置过期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	if err := m.client.SetBucketLifecycle(ctx, bucketName, cfg); err != nil {
		return err
	}
	m.logger.Info().Str("bucket", bucketName).Int("expiry_days", expiryDays).Msg("生命周期规则已设置")
	return nil
}

func (m *MinIO) startSpan(ctx context.Context, name, bucket, key string) (context.Context, trace.Span) {
	return minioTracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("minio.bucket", bucket),
			attribute.String("minio.object", key),
		),
	)
}

func (m *MinIO) put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	ctx, span := m.startSpan(ctx, "MinIO.PutObject", bucket, key)
	defer span.End()

	info, err := m.client.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return fmt.Errorf("上传对象 %s/%s 失败: %w", bucket, key, err)
	}
	span.SetAttributes(attribute.Int64("minio.size", info.Size))
	m.logger.Debug().Str("bucket", bucket).Str("object", key).Int64("size", info.Size).Msg("对象上传成功")
	return nil
}

func (m *MinIO) get(ctx context.Context, bucket, key string) ([]byte, error) {
	ctx, span := m.startSpan(ctx, "MinIO.GetObject", bucket, key)
	defer span.End()

	obj, err := m.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", bucket, key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("对象 %s/%s: %w", bucket, key, ErrNotFound)
		}
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", bucket, key, err)
	}
	return data, nil
}

// UploadOriginal 原始文件按MD5归档: cv/<md5>/original.<ext>
func (m *MinIO) UploadOriginal(ctx context.Context, md5Hex, ext string, data []byte) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	objectKey := fmt.Sprintf("cv/%s/original.%s", md5Hex, ext)
	if err := m.put(ctx, m.originalBucket, objectKey, data, ContentTypeForExt(ext)); err != nil {
		return "", err
	}
	return objectKey, nil
}

// GetOriginal 读取原始文件
func (m *MinIO) GetOriginal(ctx context.Context, objectKey string) ([]byte, error) {
	return m.get(ctx, m.originalBucket, objectKey)
}

// UploadSavedCV 已保存简历以文件名为对象键
func (m *MinIO) UploadSavedCV(ctx context.Context, filename string, data []byte) error {
	return m.put(ctx, m.savedCVBucket, filename, data, "application/json")
}

// GetSavedCV 读取已保存简历，不存在时返回 ErrNotFound
func (m *MinIO) GetSavedCV(ctx context.Context, filename string) ([]byte, error) {
	return m.get(ctx, m.savedCVBucket, filename)
}

// ListSavedCVs 列出已保存的 .json 简历，按文件名排序
func (m *MinIO) ListSavedCVs(ctx context.Context) ([]types.SavedCVInfo, error) {
	ctx, span := m.startSpan(ctx, "MinIO.ListObjects", m.savedCVBucket, "")
	defer span.End()

	files := []types.SavedCVInfo{}
	for obj := range m.client.ListObjects(ctx, m.savedCVBucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			tracing.RecordError(span, obj.Err, tracing.ErrorTypeObjectStore)
			return nil, fmt.Errorf("列出存储桶 %s 失败: %w", m.savedCVBucket, obj.Err)
		}
		if !strings.HasSuffix(obj.Key, constants.SavedCVSuffix) {
			continue
		}
		files = append(files, types.SavedCVInfo{
			Filename:  obj.Key,
			Size:      obj.Size,
			UpdatedAt: obj.LastModified,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Filename < files[j].Filename })
	span.SetAttributes(attribute.Int("minio.object_count", len(files)))
	return files, nil
}

// ContentTypeForExt 根据扩展名返回内容类型
func ContentTypeForExt(ext string) string {
	switch strings.TrimPrefix(strings.ToLower(ext), ".") {
	case "pdf":
		return "application/pdf"
	case "docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case "txt":
		return "text/plain"
	case "json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
