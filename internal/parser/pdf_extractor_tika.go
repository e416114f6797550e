package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TikaPDFExtractor 是基于Apache Tika服务器的文档解析器
type TikaPDFExtractor struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client

	extractFullMetadata    bool
	extractMinimalMetadata bool
	extractAnnotations     bool
	logger                 *zerolog.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaPDFExtractor)

// WithFullMetadata 配置是否提取完整元数据
func WithFullMetadata(extract bool) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.extractFullMetadata = extract
	}
}

// WithMinimalMetadata 配置是否提取精简的关键元数据
func WithMinimalMetadata(extract bool) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.extractMinimalMetadata = extract
	}
}

// WithAnnotations 配置是否提取PDF链接注释文本
func WithAnnotations(extract bool) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.extractAnnotations = extract
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger *zerolog.Logger) TikaOption {
	return func(e *TikaPDFExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.Client.Timeout = timeout
	}
}

var _ TextExtractor = (*TikaPDFExtractor)(nil)

// importantMetadataKeys 精简模式下保留的元数据字段
var importantMetadataKeys = map[string]bool{
	"pdf:PDFVersion":      true,
	"xmpTPg:NPages":       true,
	"dcterms:created":     true,
	"language":            true,
	"dc:title":            true,
	"Content-Type":        true,
	"pdf:docinfo:title":   true,
	"pdf:docinfo:created": true,
}

// NewTikaPDFExtractor 创建一个新的Tika解析器
func NewTikaPDFExtractor(serverURL string, options ...TikaOption) *TikaPDFExtractor {
	defaultLogger := log.With().Str("component", "tika").Logger()
	extractor := &TikaPDFExtractor{
		ServerURL:              strings.TrimRight(serverURL, "/"),
		Client:                 &http.Client{Timeout: 60 * time.Second},
		extractMinimalMetadata: true,
		extractAnnotations:     true,
		logger:                 &defaultLogger,
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// ExtractFromFile 从文件提取文本内容
func (e *TikaPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return extractFile(ctx, e, e.logger, filePath)
}

// ExtractTextFromReader 从io.Reader提取文本内容
func (e *TikaPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取文档内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, options)
}

// ExtractTextFromBytes 调用 PUT /tika 获取纯文本，按配置再调用 PUT /meta 获取元数据
// 元数据获取失败只记录日志，不影响文本结果
func (e *TikaPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	startTime := time.Now()
	metadata := extraMetaFrom(options)
	metadata["engine"] = "tika"
	metadata["extraction_time"] = time.Now().Format(time.RFC3339)

	headers := map[string]string{"Accept": "text/plain"}
	if !e.extractAnnotations {
		headers["X-Tika-PDFExtractAnnotationText"] = "false"
	}

	textBytes, err := e.put(ctx, "/tika", data, uri, headers)
	if err != nil {
		return "", metadata, err
	}
	text := string(textBytes)
	metadata["text_length"] = len(text)
	metadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	if !e.extractMinimalMetadata && !e.extractFullMetadata {
		return text, metadata, nil
	}

	rawMetadata, err := e.extractMetadata(ctx, data, uri)
	if err != nil {
		e.logger.Warn().Err(err).Str("uri", uri).Msg("元数据提取失败，继续使用基本元数据")
		return text, metadata, nil
	}
	for k, v := range rawMetadata {
		if e.extractFullMetadata || importantMetadataKeys[k] {
			metadata[k] = v
		}
	}
	return text, metadata, nil
}

func (e *TikaPDFExtractor) extractMetadata(ctx context.Context, data []byte, uri string) (map[string]interface{}, error) {
	metadataBytes, err := e.put(ctx, "/meta", data, uri, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal(metadataBytes, &metadata); err != nil {
		return nil, fmt.Errorf("解析元数据JSON失败: %w", err)
	}
	return metadata, nil
}

func (e *TikaPDFExtractor) put(ctx context.Context, path string, data []byte, uri string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeFor(uri))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika服务器返回错误状态码: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取Tika响应失败: %w", err)
	}
	return body, nil
}

func contentTypeFor(uri string) string {
	if strings.HasSuffix(strings.ToLower(uri), ".docx") {
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/pdf"
}
