package parser

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	docxParagraphEndRe = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	docxTabRe          = regexp.MustCompile(`<w:tab\s*/>`)
	xmlTagRe           = regexp.MustCompile(`<[^>]+>`)

	// 域代码和修订中已删除的文字不属于段落正文
	docxHiddenTextRe = regexp.MustCompile(`(?s)<w:(?:instrText|delText|delInstrText)(?:\s[^>]*)?>.*?</w:(?:instrText|delText|delInstrText)>`)
)

// DocxExtractor 从 word/document.xml 提取段落文本
type DocxExtractor struct {
	logger *zerolog.Logger
}

// DocxOption 配置选项
type DocxOption func(*DocxExtractor)

// WithDocxLogger 配置自定义日志记录器
func WithDocxLogger(logger *zerolog.Logger) DocxOption {
	return func(e *DocxExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

var _ TextExtractor = (*DocxExtractor)(nil)

// NewDocxExtractor 创建 DOCX 提取器
func NewDocxExtractor(options ...DocxOption) *DocxExtractor {
	defaultLogger := log.With().Str("component", "docx").Logger()
	e := &DocxExtractor{logger: &defaultLogger}
	for _, option := range options {
		option(e)
	}
	return e
}

// ExtractFromFile 从DOCX文件提取文本
func (e *DocxExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return extractFile(ctx, e, e.logger, filePath)
}

// ExtractTextFromReader 读取全部内容后按字节数组处理
func (e *DocxExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取DOCX内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, options)
}

// ExtractTextFromBytes 非空段落按顺序用换行连接
func (e *DocxExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (text string, metadata map[string]interface{}, err error) {
	metadata = extraMetaFrom(options)
	startTime := time.Now()

	defer recoverDecodePanic(uri, &err)

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", metadata, fmt.Errorf("解析DOCX %s 失败: %w", uri, err)
	}
	defer doc.Close()

	paragraphs := DocxParagraphs(doc.Editable().GetContent())
	text = strings.Join(paragraphs, "\n")

	metadata["engine"] = "docx"
	metadata["paragraph_count"] = len(paragraphs)
	metadata["text_length"] = len(text)
	metadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	e.logger.Debug().Str("uri", uri).Int("paragraphs", len(paragraphs)).Msg("DOCX 提取完成")
	return text, metadata, nil
}

// DocxParagraphs 把 document.xml 内容拆成去掉标签的非空段落
func DocxParagraphs(documentXML string) []string {
	s := docxHiddenTextRe.ReplaceAllString(documentXML, "")
	s = docxTabRe.ReplaceAllString(s, "\t")
	s = docxParagraphEndRe.ReplaceAllString(s, "\n")
	s = xmlTagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	var paragraphs []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return paragraphs
}
