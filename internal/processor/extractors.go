package processor

import (
	"context"
	"fmt"
	"time"

	"cv-maker-go/internal/config"
	"cv-maker-go/internal/logger"
	"cv-maker-go/internal/parser"
)

// NewPDFExtractor 按引擎名创建 PDF 提取器
func NewPDFExtractor(ctx context.Context, engine string, cfg *config.Config) (TextExtractor, error) {
	decodeTimeout := config.GetDuration(cfg.Parser.DecodeTimeout, 30*time.Second)

	switch engine {
	case "", config.PDFEngineEino:
		return parser.NewEinoPDFTextExtractor(ctx,
			parser.WithEinoLogger(logger.Component("eino_pdf")),
			parser.WithEinoTimeout(decodeTimeout),
		)
	case config.PDFEngineLedongthuc:
		return parser.NewLedongthucPDFExtractor(
			parser.WithLedongthucLogger(logger.Component("ledongthuc_pdf")),
		), nil
	case config.PDFEngineTika:
		if cfg.Tika.ServerURL == "" {
			return nil, fmt.Errorf("tika 引擎需要配置 tika.server_url")
		}
		opts := []parser.TikaOption{parser.WithTikaLogger(logger.Component("tika"))}
		if cfg.Tika.Timeout > 0 {
			opts = append(opts, parser.WithTimeout(time.Duration(cfg.Tika.Timeout)*time.Second))
		}
		switch cfg.Tika.MetadataMode {
		case "full":
			opts = append(opts, parser.WithFullMetadata(true))
		case "none":
			opts = append(opts, parser.WithMinimalMetadata(false))
		}
		return parser.NewTikaPDFExtractor(cfg.Tika.ServerURL, opts...), nil
	default:
		return nil, fmt.Errorf("未知的 PDF 引擎: %q", engine)
	}
}

// BuildExtractorOptions 按配置注册 pdf 与 docx 提取器
// engine 非空时覆盖配置中的 PDF 引擎
func BuildExtractorOptions(ctx context.Context, cfg *config.Config, engine string) ([]Option, error) {
	if engine == "" {
		engine = cfg.Parser.PDFEngine
	}
	if engine == "" {
		engine = config.PDFEngineEino
	}

	pdfExtractor, err := NewPDFExtractor(ctx, engine, cfg)
	if err != nil {
		return nil, err
	}
	docxExtractor := parser.NewDocxExtractor(parser.WithDocxLogger(logger.Component("docx")))

	return []Option{
		WithExtractor("pdf", pdfExtractor),
		WithExtractor("docx", docxExtractor),
		WithEngineName(engine),
	}, nil
}
