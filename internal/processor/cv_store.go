package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"cv-maker-go/internal/config"
	"cv-maker-go/internal/constants"
	"cv-maker-go/internal/logger"
	"cv-maker-go/internal/storage"
	"cv-maker-go/internal/storage/models"
	"cv-maker-go/internal/types"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
)

// CVStore 已保存简历的保存、读取和列表
type CVStore struct {
	backend SavedCVBackend
	mirror  SavedCVMirror
	logger  *zerolog.Logger
}

// StoreOption CVStore 的配置选项
type StoreOption func(*CVStore)

// WithMirror 每次保存同时写入数据库
func WithMirror(mirror SavedCVMirror) StoreOption {
	return func(s *CVStore) {
		s.mirror = mirror
	}
}

// NewCVStore 创建 CVStore
func NewCVStore(backend SavedCVBackend, opts ...StoreOption) *CVStore {
	s := &CVStore{backend: backend, logger: logger.Component("cv_store")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewCVStoreFromStorage 按配置的后端从存储聚合创建 CVStore，MySQL 可用时开启镜像
func NewCVStoreFromStorage(s *storage.Storage, backend string) (*CVStore, error) {
	var b SavedCVBackend
	switch backend {
	case "", config.StoreBackendLocal:
		if s.Local == nil {
			return nil, fmt.Errorf("本地存储不可用")
		}
		b = localBackend{s.Local}
	case config.StoreBackendMinIO:
		if s.MinIO == nil {
			return nil, fmt.Errorf("MinIO 不可用")
		}
		b = minioBackend{s.MinIO}
	default:
		return nil, fmt.Errorf("未知的存储后端: %q", backend)
	}

	var opts []StoreOption
	if s.MySQL != nil {
		opts = append(opts, WithMirror(s.MySQL))
	}
	return NewCVStore(b, opts...), nil
}

// SavedCVFilename 由姓名生成文件名 cv_<姓名>.json，空格和路径分隔符替换为下划线
// 空姓名保持为空，得到 cv_.json
func SavedCVFilename(name string) string {
	name = strings.NewReplacer(" ", "_", "/", "_", `\`, "_").Replace(name)
	return constants.SavedCVPrefix + name + constants.SavedCVSuffix
}

// ValidateFilename 拒绝空文件名和任何包含路径成分的文件名
func ValidateFilename(filename string) error {
	if filename == "" || filename == "." || filename == ".." ||
		strings.ContainsAny(filename, `/\`) || filepath.Base(filename) != filename {
		return newError("validate", filename, ErrInvalidFilename, "")
	}
	return nil
}

// candidateName 读取 personal.name，缺失或不是字符串时 ok 为 false
func candidateName(doc map[string]interface{}) (name string, ok bool) {
	personal, isMap := doc["personal"].(map[string]interface{})
	if !isMap {
		return "", false
	}
	name, ok = personal["name"].(string)
	return name, ok
}

// Save 保存JSON简历，保持原始键顺序并以两个空格缩进，返回文件名
func (s *CVStore) Save(ctx context.Context, body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", newError("save", "", ErrNoData, "")
	}

	var generic interface{}
	if err := json.Unmarshal(trimmed, &generic); err != nil {
		return "", newError("save", "", ErrInvalidData, err.Error())
	}
	doc, isObject := generic.(map[string]interface{})
	switch {
	case isObject && len(doc) == 0:
		return "", newError("save", "", ErrNoData, "")
	case !isObject:
		if arr, ok := generic.([]interface{}); ok && len(arr) == 0 {
			return "", newError("save", "", ErrNoData, "")
		}
		return "", newError("save", "", ErrInvalidData, "简历数据必须是JSON对象")
	}

	name, ok := candidateName(doc)
	filename := SavedCVFilename(constants.UnknownCVName)
	if ok {
		filename = SavedCVFilename(name)
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, trimmed, "", "  "); err != nil {
		return "", newError("save", filename, ErrInvalidData, err.Error())
	}
	content := indented.Bytes()

	if err := s.backend.Write(ctx, filename, content); err != nil {
		return "", NewStorageError("save", filename, err)
	}

	if s.mirror != nil {
		saved := &models.SavedCV{
			Filename:      filename,
			CandidateName: name,
			Content:       datatypes.JSON(trimmed),
			SizeBytes:     int64(len(content)),
		}
		if err := s.mirror.UpsertSavedCV(ctx, saved); err != nil {
			s.logger.Warn().Err(err).Str("file", filename).Msg("简历记录写入数据库失败")
		}
	}

	s.logger.Info().Str("file", filename).Int("bytes", len(content)).Msg("简历已保存")
	return filename, nil
}

// Load 读取已保存简历的JSON内容
func (s *CVStore) Load(ctx context.Context, filename string) (json.RawMessage, error) {
	if err := ValidateFilename(filename); err != nil {
		return nil, err
	}

	data, err := s.backend.Read(ctx, filename)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newError("load", filename, ErrNotFound, "")
	}
	if err != nil {
		return nil, NewStorageError("load", filename, err)
	}
	if !json.Valid(data) {
		return nil, newError("load", filename, ErrInvalidData, "文件内容不是合法JSON")
	}
	return json.RawMessage(data), nil
}

// List 列出已保存的简历
func (s *CVStore) List(ctx context.Context) ([]types.SavedCVInfo, error) {
	files, err := s.backend.List(ctx)
	if err != nil {
		return nil, NewStorageError("list", "", err)
	}
	return files, nil
}

// localBackend 本地目录后端
type localBackend struct {
	store *storage.LocalStore
}

func (b localBackend) Write(_ context.Context, filename string, data []byte) error {
	return b.store.Write(filename, data)
}

func (b localBackend) Read(_ context.Context, filename string) ([]byte, error) {
	return b.store.Read(filename)
}

func (b localBackend) List(context.Context) ([]types.SavedCVInfo, error) {
	return b.store.List()
}

// minioBackend 对象存储后端
type minioBackend struct {
	minio *storage.MinIO
}

func (b minioBackend) Write(ctx context.Context, filename string, data []byte) error {
	return b.minio.UploadSavedCV(ctx, filename, data)
}

func (b minioBackend) Read(ctx context.Context, filename string) ([]byte, error) {
	return b.minio.GetSavedCV(ctx, filename)
}

func (b minioBackend) List(ctx context.Context) ([]types.SavedCVInfo, error) {
	return b.minio.ListSavedCVs(ctx)
}
