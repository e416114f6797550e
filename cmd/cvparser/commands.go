package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cv-maker-go/internal/config"
	"cv-maker-go/internal/parser"
	"cv-maker-go/internal/processor"
	"cv-maker-go/pkg/utils"
)

var stdout io.Writer = os.Stdout

// newProcessor 按配置和 -engine 构建不接入外部存储的处理器
func newProcessor(ctx context.Context) (*processor.CVProcessor, error) {
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}
	opts, err := processor.BuildExtractorOptions(ctx, cfg, strings.ToLower(*engine))
	if err != nil {
		return nil, err
	}
	return processor.NewCVProcessor(opts...), nil
}

func isPlainText(path string) bool {
	return utils.FileExtension(path) == "txt"
}

// loadText 读取文件并解码为文本，.txt 文件直接读取
func loadText(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("读取文件失败: %w", err)
	}
	if isPlainText(path) {
		return string(data), nil
	}

	p, err := newProcessor(ctx)
	if err != nil {
		return "", err
	}
	text, _, err := p.ExtractText(ctx, filepath.Base(path), data)
	return text, err
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func handleParseCommand() error {
	ctx := context.Background()

	if isPlainText(*filePath) {
		text, err := loadText(ctx, *filePath)
		if err != nil {
			return err
		}
		return writeJSON(parser.Parse(text))
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}
	p, err := newProcessor(ctx)
	if err != nil {
		return err
	}
	result, err := p.Process(ctx, filepath.Base(*filePath), data)
	if err != nil {
		return err
	}
	return writeJSON(result.Document)
}

func handleExtractCommand() error {
	text, err := loadText(context.Background(), *filePath)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, text)
	return err
}

func handleNormalizeCommand() error {
	text, err := loadText(context.Background(), *filePath)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, parser.Normalize(text))
	return err
}

func handleSectionsCommand() error {
	text, err := loadText(context.Background(), *filePath)
	if err != nil {
		return err
	}
	printSections(stdout, parser.Analyze(text))
	return nil
}

// printSections 输出非空分段，最后列出被移动到教育的块
func printSections(w io.Writer, a parser.Analysis) {
	a.Sections.Each(func(key, content string) {
		if content == "" {
			return
		}
		fmt.Fprintf(w, "==== %s ====\n%s\n\n", key, content)
	})
	fmt.Fprintf(w, "==== moved blocks (%d) ====\n", len(a.MovedBlocks))
	for i, block := range a.MovedBlocks {
		fmt.Fprintf(w, "[%d]\n%s\n", i+1, block)
	}
}
