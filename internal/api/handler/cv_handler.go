package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"cv-maker-go/internal/api/middleware"
	"cv-maker-go/internal/logger"
	"cv-maker-go/internal/processor"
	"cv-maker-go/internal/storage"
	"cv-maker-go/internal/tracing"
	"cv-maker-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// CVParser 上传文件和已归档对象的解析
type CVParser interface {
	Process(ctx context.Context, originalName string, data []byte) (*processor.ProcessResult, error)
	ProcessObject(ctx context.Context, objectKey, originalName string) (*processor.ProcessResult, error)
}

// CVRepository 已保存简历
type CVRepository interface {
	Save(ctx context.Context, body []byte) (string, error)
	Load(ctx context.Context, filename string) (json.RawMessage, error)
	List(ctx context.Context) ([]types.SavedCVInfo, error)
}

// EventPublisher 发布 JSON 消息
type EventPublisher interface {
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error
}

// CVHandler 简历解析与保存的HTTP处理器
type CVHandler struct {
	parser CVParser
	store  CVRepository

	publisher       EventPublisher
	eventExchange   string
	eventRoutingKey string

	logger *zerolog.Logger
}

// HandlerOption CVHandler 的配置选项
type HandlerOption func(*CVHandler)

// WithEventPublisher 异步解析完成后直接发布 cv.parsed 事件
func WithEventPublisher(publisher EventPublisher, exchange, routingKey string) HandlerOption {
	return func(h *CVHandler) {
		h.publisher = publisher
		h.eventExchange = exchange
		h.eventRoutingKey = routingKey
	}
}

// NewCVHandler 创建处理器
func NewCVHandler(parser CVParser, store CVRepository, opts ...HandlerOption) *CVHandler {
	h := &CVHandler{
		parser: parser,
		store:  store,
		logger: logger.Component("cv_handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Parse 解析上传的简历
// POST /api/parse
func (h *CVHandler) Parse(ctx context.Context, c *app.RequestContext) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		// 文件名为空的文件部分会被当作普通表单字段
		if form, formErr := c.MultipartForm(); formErr == nil {
			if _, ok := form.Value["file"]; ok {
				h.fail(ctx, c, consts.StatusBadRequest, utils.H{"error": "no file selected"})
				return
			}
		}
		h.fail(ctx, c, consts.StatusBadRequest, utils.H{"error": "no file provided"})
		return
	}
	if fileHeader.Filename == "" {
		h.fail(ctx, c, consts.StatusBadRequest, utils.H{"error": "no file selected"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, utils.H{"error": "parsing failed", "detail": "打开上传文件失败"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.fail(ctx, c, consts.StatusInternalServerError, utils.H{"error": "parsing failed", "detail": err.Error()})
		return
	}

	result, err := h.parser.Process(ctx, fileHeader.Filename, data)
	switch {
	case errors.Is(err, processor.ErrInvalidFileType):
		h.fail(ctx, c, consts.StatusBadRequest, utils.H{"error": "invalid file type"})
		return
	case err != nil:
		h.requestLogger(ctx).Error().Err(err).Str("file", fileHeader.Filename).Msg("简历解析失败")
		h.fail(ctx, c, consts.StatusInternalServerError, utils.H{"error": "parsing failed", "detail": processor.Detail(err)})
		return
	}

	if result.Cached {
		c.Header("X-Parse-Cache", "hit")
	}
	c.JSON(consts.StatusOK, result.Document)
}

// Save 保存编辑后的简历JSON
// POST /api/save
func (h *CVHandler) Save(ctx context.Context, c *app.RequestContext) {
	filename, err := h.store.Save(ctx, c.Request.Body())
	switch {
	case errors.Is(err, processor.ErrNoData):
		h.fail(ctx, c, consts.StatusBadRequest, utils.H{"error": "No data provided"})
		return
	case err != nil:
		h.requestLogger(ctx).Error().Err(err).Msg("保存简历失败")
		h.fail(ctx, c, consts.StatusInternalServerError, utils.H{"error": "Failed to save CV", "detail": processor.Detail(err)})
		return
	}

	c.JSON(consts.StatusOK, utils.H{"message": "CV saved successfully", "filename": filename})
}

// Load 读取已保存的简历
// GET /api/load?filename=
func (h *CVHandler) Load(ctx context.Context, c *app.RequestContext) {
	filename := c.Query("filename")
	if filename == "" {
		h.fail(ctx, c, consts.StatusBadRequest, utils.H{"error": "No filename provided"})
		return
	}

	data, err := h.store.Load(ctx, filename)
	switch {
	case errors.Is(err, processor.ErrInvalidFilename):
		h.fail(ctx, c, consts.StatusBadRequest, utils.H{"error": "Invalid filename"})
		return
	case errors.Is(err, processor.ErrNotFound):
		h.fail(ctx, c, consts.StatusNotFound, utils.H{"error": "File not found"})
		return
	case err != nil:
		h.requestLogger(ctx).Error().Err(err).Str("file", filename).Msg("读取简历失败")
		h.fail(ctx, c, consts.StatusInternalServerError, utils.H{"error": "Failed to load CV", "detail": processor.Detail(err)})
		return
	}

	c.Data(consts.StatusOK, "application/json; charset=utf-8", data)
}

// List 列出已保存的简历文件名
// GET /api/list
func (h *CVHandler) List(ctx context.Context, c *app.RequestContext) {
	files, err := h.store.List(ctx)
	if err != nil {
		h.requestLogger(ctx).Error().Err(err).Msg("列出简历失败")
		h.fail(ctx, c, consts.StatusInternalServerError, utils.H{"error": "Failed to list CVs", "detail": processor.Detail(err)})
		return
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Filename)
	}
	c.JSON(consts.StatusOK, utils.H{"files": names})
}

// fail 写错误响应，并把状态码和错误记录到当前请求的 span
func (h *CVHandler) fail(ctx context.Context, c *app.RequestContext, status int, body utils.H) {
	err := fmt.Errorf("%v", body["error"])
	if detail, ok := body["detail"]; ok {
		err = fmt.Errorf("%v: %v", body["error"], detail)
	}
	tracing.RecordHTTPError(trace.SpanFromContext(ctx), err, status)
	c.JSON(status, body)
}

// requestLogger 带上请求ID的日志
func (h *CVHandler) requestLogger(ctx context.Context) *zerolog.Logger {
	id := middleware.FromContext(ctx)
	if id == "" {
		return h.logger
	}
	l := h.logger.With().Str("request_id", id).Logger()
	return &l
}

// Health 健康检查
// GET /health
func (h *CVHandler) Health(_ context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "ok"})
}

// StartParseRequestConsumer 消费解析请求队列，返回的通道在消费者退出后关闭
func (h *CVHandler) StartParseRequestConsumer(ctx context.Context, mq *storage.RabbitMQ, queue string, prefetch int) (<-chan struct{}, error) {
	if mq == nil {
		return nil, fmt.Errorf("RabbitMQ 未启用")
	}
	h.logger.Info().Str("queue", queue).Int("prefetch", prefetch).Msg("解析请求消费者启动")
	return mq.StartConsumer(ctx, queue, prefetch, h.HandleParseRequest)
}

// HandleParseRequest 处理一条解析请求消息，返回 false 时消息会被 nack
func (h *CVHandler) HandleParseRequest(ctx context.Context, body []byte) bool {
	var req storage.ParseRequestMessage
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Error().Err(err).Msg("解析请求消息格式错误")
		return false
	}
	if req.ObjectKey == "" {
		h.logger.Error().Msg("解析请求缺少 object_key")
		return false
	}
	if req.Filename == "" {
		req.Filename = req.ObjectKey
	}

	log := h.logger.With().Str("object_key", req.ObjectKey).Str("file", req.Filename).Logger()

	result, err := h.parser.ProcessObject(ctx, req.ObjectKey, req.Filename)
	if err != nil {
		// 重试无意义的错误直接确认
		if errors.Is(err, processor.ErrNotFound) || errors.Is(err, processor.ErrInvalidFileType) {
			log.Warn().Err(err).Msg("解析请求无法处理，丢弃")
			return true
		}
		log.Error().Err(err).Msg("异步解析失败")
		return false
	}

	// 已写入解析记录时事件由发件箱中继发布
	if result.RecordID != "" || h.publisher == nil || h.eventExchange == "" {
		log.Info().Str("record_id", result.RecordID).Msg("异步解析完成")
		return true
	}

	event := processor.NewParsedEvent(result, "", time.Now())
	if err := h.publisher.PublishJSON(ctx, h.eventExchange, h.eventRoutingKey, event, true); err != nil {
		log.Error().Err(err).Msg("发布 cv.parsed 事件失败")
		return false
	}
	log.Info().Str("name", tracing.MaskPII(event.CandidateName)).Msg("异步解析完成，事件已发布")
	return true
}
