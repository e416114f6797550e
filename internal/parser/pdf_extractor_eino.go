package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 提取文本，默认的 PDF 引擎
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	logger  *zerolog.Logger
	timeout time.Duration
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(logger *zerolog.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEinoTimeout 配置单个文档的解析超时
func WithEinoTimeout(timeout time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

var _ TextExtractor = (*EinoPDFTextExtractor)(nil)

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 不按页面分割，整个文档作为一段连续文本返回
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 Eino PDF 解析器失败: %w", err)
	}

	defaultLogger := log.With().Str("component", "eino_pdf").Logger()
	extractor := &EinoPDFTextExtractor{
		parser:  p,
		logger:  &defaultLogger,
		timeout: defaultDecodeTimeout,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractFromFile 从PDF文件提取文本
func (e *EinoPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return extractFile(ctx, e, e.logger, filePath)
}

// ExtractTextFromReader 从 io.Reader 中提取文本和元数据
func (e *EinoPDFTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (text string, metadata map[string]interface{}, err error) {
	extraMeta := extraMetaFrom(options)
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	defer recoverDecodePanic(uri, &err)

	docs, err := e.parser.Parse(ctx, reader,
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(extraMeta),
	)
	duration := time.Since(startTime)
	if err != nil {
		e.logger.Error().Err(err).Str("uri", uri).Dur("elapsed", duration).Msg("Eino PDF 解析失败")
		return "", extraMeta, fmt.Errorf("eino PDF parser failed for URI %s: %w", uri, err)
	}
	if len(docs) == 0 {
		return "", extraMeta, fmt.Errorf("eino PDF parser returned no documents for URI %s", uri)
	}

	contents := make([]string, 0, len(docs))
	for _, doc := range docs {
		contents = append(contents, doc.Content)
	}
	fullContent := strings.Join(contents, "\n\n")

	metadata = make(map[string]interface{})
	for k, v := range docs[0].MetaData {
		metadata[k] = v
	}
	for k, v := range extraMeta {
		metadata[k] = v
	}
	metadata["engine"] = "eino"
	metadata["processing_duration_ms"] = duration.Milliseconds()
	metadata["document_count"] = len(docs)
	metadata["text_length"] = len(fullContent)

	e.logger.Debug().Str("uri", uri).Int("chars", len(fullContent)).Dur("elapsed", duration).Msg("Eino PDF 提取完成")
	return fullContent, metadata, nil
}

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	return e.ExtractTextFromReader(ctx, bytes.NewReader(data), uri, options)
}
