package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LedongthucPDFExtractor 纯 Go 的 PDF 纯文本提取，逐页读取
type LedongthucPDFExtractor struct {
	logger *zerolog.Logger
}

// LedongthucOption 配置选项
type LedongthucOption func(*LedongthucPDFExtractor)

// WithLedongthucLogger 配置自定义日志记录器
func WithLedongthucLogger(logger *zerolog.Logger) LedongthucOption {
	return func(e *LedongthucPDFExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

var _ TextExtractor = (*LedongthucPDFExtractor)(nil)

// NewLedongthucPDFExtractor 创建提取器
func NewLedongthucPDFExtractor(options ...LedongthucOption) *LedongthucPDFExtractor {
	defaultLogger := log.With().Str("component", "ledongthuc_pdf").Logger()
	e := &LedongthucPDFExtractor{logger: &defaultLogger}
	for _, option := range options {
		option(e)
	}
	return e
}

// ExtractFromFile 从PDF文件提取文本
func (e *LedongthucPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return extractFile(ctx, e, e.logger, filePath)
}

// ExtractTextFromReader 读取全部内容后按字节数组处理
func (e *LedongthucPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, options)
}

// ExtractTextFromBytes 逐页提取纯文本，页与页之间用换行分隔，空页跳过
func (e *LedongthucPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (text string, metadata map[string]interface{}, err error) {
	metadata = extraMetaFrom(options)
	startTime := time.Now()

	defer recoverDecodePanic(uri, &err)

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", metadata, fmt.Errorf("读取PDF %s 失败: %w", uri, err)
	}

	var b strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", metadata, fmt.Errorf("PDF %s 提取被取消: %w", uri, err)
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", metadata, fmt.Errorf("提取PDF %s 第 %d 页失败: %w", uri, i, err)
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	text = b.String()
	metadata["engine"] = "ledongthuc"
	metadata["page_count"] = numPages
	metadata["text_length"] = len(text)
	metadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	e.logger.Debug().Str("uri", uri).Int("pages", numPages).Int("chars", len(text)).Msg("PDF 提取完成")
	return text, metadata, nil
}
