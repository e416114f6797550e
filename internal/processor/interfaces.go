package processor

import (
	"context"
	"io"
	"time"

	"cv-maker-go/internal/storage/models"
	"cv-maker-go/internal/types"
)

// TextExtractor 文档文本提取器
type TextExtractor interface {
	// ExtractFromFile 从文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error)
}

// TextParser 文本到结构化简历
type TextParser interface {
	Parse(text string) *types.ParsedDocument
}

// ParseCache 按文件MD5缓存解析结果
type ParseCache interface {
	GetParseResult(ctx context.Context, md5Hex string) ([]byte, error)
	SetParseResult(ctx context.Context, md5Hex string, data []byte, ttl time.Duration) error
	CheckFileMD5Exists(ctx context.Context, md5Hex string) (bool, error)
	CheckAndAddFileMD5(ctx context.Context, md5Hex string) (bool, error)
}

// OriginalArchive 原始上传文件归档
type OriginalArchive interface {
	UploadOriginal(ctx context.Context, md5Hex, ext string, data []byte) (string, error)
	GetOriginal(ctx context.Context, objectKey string) ([]byte, error)
}

// ParseRecorder 解析记录与事件的持久化
type ParseRecorder interface {
	CreateParseRecordWithOutbox(ctx context.Context, record *models.CVParseRecord, msg *models.OutboxMessage) error
	LatestParseRecordByMD5(ctx context.Context, md5Hex string) (*models.CVParseRecord, error)
}

// SavedCVBackend 已保存简历的读写后端
type SavedCVBackend interface {
	Write(ctx context.Context, filename string, data []byte) error
	Read(ctx context.Context, filename string) ([]byte, error)
	List(ctx context.Context) ([]types.SavedCVInfo, error)
}

// SavedCVMirror 已保存简历写入数据库
type SavedCVMirror interface {
	UpsertSavedCV(ctx context.Context, saved *models.SavedCV) error
}
