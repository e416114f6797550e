package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// TextExtractor 文档文本提取器 - 与 processor 包中定义相同
type TextExtractor interface {
	// ExtractFromFile 从文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从 io.Reader 提取文本和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error)
}

const defaultDecodeTimeout = 30 * time.Second

// extraMetaFrom 把调用方传入的 options 转成元数据 map
// 非 map 类型的 options 原样记录在 original_options 下
func extraMetaFrom(options interface{}) map[string]interface{} {
	switch meta := options.(type) {
	case nil:
		return make(map[string]interface{})
	case map[string]interface{}:
		out := make(map[string]interface{}, len(meta))
		for k, v := range meta {
			out[k] = v
		}
		return out
	default:
		return map[string]interface{}{"original_options": options}
	}
}

// extractFile 打开文件并交给 extractor 的 Reader 版本处理
func extractFile(ctx context.Context, e TextExtractor, logger *zerolog.Logger, filePath string) (string, map[string]interface{}, error) {
	startTime := time.Now()

	file, err := os.Open(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("打开文件 %s 失败: %w", filePath, err)
	}
	defer file.Close()

	if info, err := file.Stat(); err == nil {
		logger.Debug().Str("file", filePath).Int64("size_bytes", info.Size()).Msg("开始处理文件")
	}

	extraMeta := map[string]interface{}{
		"source_file_path": filePath,
		"extraction_time":  time.Now().Format(time.RFC3339),
	}

	text, metadata, err := e.ExtractTextFromReader(ctx, file, filePath, extraMeta)
	if err != nil {
		logger.Error().Err(err).Str("file", filePath).Dur("elapsed", time.Since(startTime)).Msg("文件处理失败")
		return "", nil, err
	}

	logger.Info().Str("file", filePath).Int("chars", len(text)).Dur("elapsed", time.Since(startTime)).Msg("文件处理完成")
	return text, metadata, nil
}

// recoverDecodePanic 第三方解码库在畸形输入上可能 panic，转换为错误返回
func recoverDecodePanic(uri string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("解码 %s 时发生异常: %v", uri, r)
	}
}
