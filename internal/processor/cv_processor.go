package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cv-maker-go/internal/constants"
	"cv-maker-go/internal/logger"
	"cv-maker-go/internal/parser"
	"cv-maker-go/internal/storage"
	"cv-maker-go/internal/storage/models"
	"cv-maker-go/internal/tracing"
	"cv-maker-go/internal/types"
	"cv-maker-go/pkg/utils"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// CVProcessor 处理一次简历上传: 校验、解码、解析，再尽力写缓存、归档和解析记录
type CVProcessor struct {
	extractors map[string]TextExtractor
	parser     TextParser

	cache           ParseCache
	archive         OriginalArchive
	recorder        ParseRecorder
	eventExchange   string
	eventRoutingKey string

	cacheTTL time.Duration
	engine   string
	logger   *zerolog.Logger
}

// ProcessResult 一次处理的结果
type ProcessResult struct {
	Document  *types.ParsedDocument
	Filename  string // 清洗后的文件名
	FileMD5   string
	Cached    bool
	ObjectKey string // 原始文件在对象存储中的键，未归档时为空
	RecordID  string // 解析记录ID，未记录时为空
	Metadata  map[string]interface{}
}

// NewCVProcessor 创建处理器，默认使用启发式解析器且不接入任何外部存储
func NewCVProcessor(opts ...Option) *CVProcessor {
	p := &CVProcessor{
		extractors: make(map[string]TextExtractor),
		parser:     parser.HeuristicParser{},
		cacheTTL:   constants.DefaultParseCacheTTL,
		logger:     logger.Component("processor"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SupportedExtensions 已注册提取器的扩展名
func (p *CVProcessor) SupportedExtensions() []string {
	exts := make([]string, 0, len(p.extractors))
	for ext := range p.extractors {
		exts = append(exts, ext)
	}
	return exts
}

// validate 清洗文件名并检查扩展名
func (p *CVProcessor) validate(originalName string) (string, string, error) {
	filename := utils.SecureFilename(originalName)
	ext := utils.FileExtension(filename)
	if !constants.AllowedExtensions[ext] {
		return filename, ext, newError("validate", originalName, ErrInvalidFileType, fmt.Sprintf("扩展名 %q", ext))
	}
	return filename, ext, nil
}

// ExtractText 只做校验和解码
func (p *CVProcessor) ExtractText(ctx context.Context, originalName string, data []byte) (string, map[string]interface{}, error) {
	filename, ext, err := p.validate(originalName)
	if err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, newError("validate", filename, ErrEmptyFile, "")
	}
	return p.decode(ctx, filename, ext, data, nil)
}

func (p *CVProcessor) decode(ctx context.Context, filename, ext string, data []byte, meta map[string]interface{}) (string, map[string]interface{}, error) {
	extractor, ok := p.extractors[ext]
	if !ok {
		return "", nil, newError("decode", filename, ErrDecodeFailed, fmt.Sprintf("没有注册 %s 提取器", ext))
	}

	ctx, span := tracing.Tracer().Start(ctx, "CVProcessor.Decode")
	defer span.End()
	span.SetAttributes(attribute.String("cv.ext", ext), attribute.Int("cv.size_bytes", len(data)))

	text, metadata, err := extractor.ExtractTextFromBytes(ctx, data, filename, meta)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDecode)
		return "", nil, NewDecodeError(filename, err)
	}
	span.SetAttributes(attribute.Int("cv.text_length", len(text)))
	return text, metadata, nil
}

// Process 处理上传的文件内容
func (p *CVProcessor) Process(ctx context.Context, originalName string, data []byte) (*ProcessResult, error) {
	return p.process(ctx, originalName, data, "")
}

// ProcessObject 从对象存储读取已归档的原始文件并处理
func (p *CVProcessor) ProcessObject(ctx context.Context, objectKey, originalName string) (*ProcessResult, error) {
	if p.archive == nil {
		return nil, newError("download", originalName, ErrStorageFailed, "对象存储未启用")
	}
	data, err := p.archive.GetOriginal(ctx, objectKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newError("download", originalName, ErrNotFound, objectKey)
	}
	if err != nil {
		return nil, NewStorageError("download", originalName, err)
	}
	return p.process(ctx, originalName, data, objectKey)
}

func (p *CVProcessor) process(ctx context.Context, originalName string, data []byte, objectKey string) (result *ProcessResult, err error) {
	ctx, span := tracing.Tracer().Start(ctx, "CVProcessor.Process")
	defer func() {
		if err != nil {
			tracing.RecordError(span, err, errorTypeOf(err))
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}()
	span.SetAttributes(attribute.String("cv.filename", tracing.SafeAttributeValue("cv.original_name", originalName, tracing.DefaultMaxLength)))

	filename, ext, err := p.validate(originalName)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, newError("validate", filename, ErrEmptyFile, "")
	}

	md5Hex := utils.CalculateMD5(data)
	span.SetAttributes(attribute.String("cv.md5", md5Hex))
	log := p.logger.With().Str("file", filename).Str("md5", md5Hex).Logger()

	if hit, ok := p.cachedDocument(ctx, md5Hex, &log); ok {
		span.SetAttributes(attribute.Bool("cv.cache_hit", true))
		if objectKey == "" {
			objectKey = hit.objectKey
		}
		return &ProcessResult{
			Document:  hit.doc,
			Filename:  filename,
			FileMD5:   md5Hex,
			Cached:    true,
			ObjectKey: objectKey,
			RecordID:  hit.recordID,
		}, nil
	}

	startTime := time.Now()
	text, metadata, err := p.decode(ctx, filename, ext, data, map[string]interface{}{"file_md5": md5Hex})
	if err != nil {
		log.Error().Err(err).Msg("文档解码失败")
		return nil, err
	}

	_, parseSpan := tracing.Tracer().Start(ctx, "CVProcessor.Parse")
	doc := p.parser.Parse(text)
	parseSpan.SetAttributes(
		attribute.Int("cv.experience_count", len(doc.Experience)),
		attribute.Int("cv.education_count", len(doc.Education)),
		attribute.Int("cv.moved_blocks", doc.Debug.MovedBlocksCount),
	)
	parseSpan.End()

	result = &ProcessResult{
		Document:  doc,
		Filename:  filename,
		FileMD5:   md5Hex,
		ObjectKey: objectKey,
		Metadata:  metadata,
	}
	p.persist(ctx, result, ext, data, &log)

	log.Info().
		Int("chars", len(text)).
		Str("name", tracing.MaskPII(doc.Personal.Name)).
		Int("experience", len(doc.Experience)).
		Int("education", len(doc.Education)).
		Int("skills", len(doc.Skills)).
		Dur("elapsed", time.Since(startTime)).
		Msg("简历解析完成")
	return result, nil
}

type cacheHit struct {
	doc       *types.ParsedDocument
	recordID  string
	objectKey string
}

// cachedDocument 先查 Redis，未命中且 MD5 出现过时回查解析记录并回填缓存
// 缓存或数据库异常只记录日志
func (p *CVProcessor) cachedDocument(ctx context.Context, md5Hex string, log *zerolog.Logger) (*cacheHit, bool) {
	if p.cache != nil {
		if doc, ok := p.fromCache(ctx, md5Hex, log); ok {
			return &cacheHit{doc: doc}, true
		}
		seen, err := p.cache.CheckFileMD5Exists(ctx, md5Hex)
		if err != nil {
			log.Warn().Err(err).Msg("查询文件MD5失败")
			return nil, false
		}
		if !seen {
			return nil, false
		}
	}
	if p.recorder == nil {
		return nil, false
	}

	record, err := p.recorder.LatestParseRecordByMD5(ctx, md5Hex)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Msg("查询解析记录失败")
		}
		return nil, false
	}
	doc := types.NewParsedDocument()
	if err := json.Unmarshal(record.ParsedResult, doc); err != nil {
		log.Warn().Err(err).Str("record_id", record.RecordID).Msg("解析记录内容损坏，忽略")
		return nil, false
	}
	if p.cache != nil {
		if err := p.cache.SetParseResult(ctx, md5Hex, record.ParsedResult, p.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("回填解析缓存失败")
		}
	}
	log.Debug().Str("record_id", record.RecordID).Msg("命中解析记录")
	return &cacheHit{doc: doc, recordID: record.RecordID, objectKey: record.OriginalPathOSS}, true
}

func (p *CVProcessor) fromCache(ctx context.Context, md5Hex string, log *zerolog.Logger) (*types.ParsedDocument, bool) {
	data, err := p.cache.GetParseResult(ctx, md5Hex)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warn().Err(err).Msg("读取解析缓存失败")
		}
		return nil, false
	}
	doc := types.NewParsedDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		log.Warn().Err(err).Msg("解析缓存内容损坏，忽略")
		return nil, false
	}
	log.Debug().Msg("命中解析缓存")
	return doc, true
}

// persist 写缓存、归档原始文件、写解析记录和事件，任何一步失败只记录日志
func (p *CVProcessor) persist(ctx context.Context, result *ProcessResult, ext string, data []byte, log *zerolog.Logger) {
	if p.cache != nil {
		if encoded, err := json.Marshal(result.Document); err != nil {
			log.Warn().Err(err).Msg("序列化解析结果失败")
		} else if err := p.cache.SetParseResult(ctx, result.FileMD5, encoded, p.cacheTTL); err != nil {
			log.Warn().Err(err).Msg("写入解析缓存失败")
		}
		if existed, err := p.cache.CheckAndAddFileMD5(ctx, result.FileMD5); err != nil {
			log.Warn().Err(err).Msg("记录文件MD5失败")
		} else if existed {
			log.Debug().Msg("文件MD5已存在，重新解析")
		}
	}

	if p.archive != nil && result.ObjectKey == "" {
		key, err := p.archive.UploadOriginal(ctx, result.FileMD5, ext, data)
		if err != nil {
			log.Warn().Err(err).Msg("归档原始文件失败")
		} else {
			result.ObjectKey = key
		}
	}

	if p.recorder != nil {
		record, msg, err := p.buildRecord(result, ext, int64(len(data)))
		if err != nil {
			log.Warn().Err(err).Msg("构建解析记录失败")
			return
		}
		if err := p.recorder.CreateParseRecordWithOutbox(ctx, record, msg); err != nil {
			log.Warn().Err(err).Msg("写入解析记录失败")
			return
		}
		result.RecordID = record.RecordID
	}
}

// buildRecord 生成解析记录和 cv.parsed 发件箱消息，未配置 exchange 时不生成消息
func (p *CVProcessor) buildRecord(result *ProcessResult, ext string, size int64) (*models.CVParseRecord, *models.OutboxMessage, error) {
	recordID, err := uuid.NewV7()
	if err != nil {
		return nil, nil, fmt.Errorf("生成记录ID失败: %w", err)
	}
	doc := result.Document
	now := time.Now()

	record := &models.CVParseRecord{
		RecordID:         recordID.String(),
		FileMD5:          result.FileMD5,
		OriginalFilename: result.Filename,
		FileExt:          ext,
		FileSize:         size,
		OriginalPathOSS:  result.ObjectKey,
		DecodeEngine:     p.engineFor(ext),
		CandidateName:    doc.Personal.Name,
		CandidateEmail:   doc.Personal.Email,
		ParsedResult:     utils.ConvertToJSON(doc),
		MovedBlocksCount: doc.Debug.MovedBlocksCount,
		Status:           models.ParseStatusSuccess,
		ParserVersion:    constants.ParserVersion,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if p.eventExchange == "" {
		return record, nil, nil
	}

	event := NewParsedEvent(result, record.RecordID, now)
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, nil, fmt.Errorf("序列化事件失败: %w", err)
	}
	msgID, err := uuid.NewV7()
	if err != nil {
		return nil, nil, fmt.Errorf("生成消息ID失败: %w", err)
	}

	msg := &models.OutboxMessage{
		ID:               msgID.String(),
		AggregateID:      record.RecordID,
		EventType:        storage.EventTypeCVParsed,
		Payload:          string(payload),
		TargetExchange:   p.eventExchange,
		TargetRoutingKey: p.eventRoutingKey,
		Status:           models.OutboxStatusPending,
		CreatedAt:        now,
	}
	return record, msg, nil
}

// NewParsedEvent 由处理结果生成 cv.parsed 事件
func NewParsedEvent(result *ProcessResult, recordID string, parsedAt time.Time) storage.CVParsedEvent {
	doc := result.Document
	return storage.CVParsedEvent{
		RecordID:         recordID,
		FileMD5:          result.FileMD5,
		OriginalFilename: result.Filename,
		OriginalPathOSS:  result.ObjectKey,
		CandidateName:    doc.Personal.Name,
		ExperienceCount:  len(doc.Experience),
		EducationCount:   len(doc.Education),
		SkillsCount:      len(doc.Skills),
		ParserVersion:    constants.ParserVersion,
		ParsedAt:         parsedAt,
	}
}

// errorTypeOf 按错误类别给 span 打标
func errorTypeOf(err error) tracing.ErrorType {
	switch {
	case errors.Is(err, ErrInvalidFileType), errors.Is(err, ErrEmptyFile):
		return tracing.ErrorTypeValidation
	case errors.Is(err, ErrDecodeFailed):
		return tracing.ErrorTypeDecode
	case errors.Is(err, ErrStorageFailed), errors.Is(err, ErrNotFound):
		return tracing.ErrorTypeObjectStore
	default:
		return tracing.ErrorTypeInternal
	}
}

func (p *CVProcessor) engineFor(ext string) string {
	if ext == "docx" {
		return "docx"
	}
	return p.engine
}
