package logger // 全局 zerolog 日志实例及 hertz 日志桥接

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Logger 默认的全局日志实例，应用中其他地方可以直接使用
	Logger = log.Logger
)

// Config 日志配置结构体
type Config struct {
	Level        string `json:"level" yaml:"level"`                 // debug, info, warn, error
	Format       string `json:"format" yaml:"format"`               // json 或 pretty
	TimeFormat   string `json:"time_format" yaml:"time_format"`     // 时间戳格式
	ReportCaller bool   `json:"report_caller" yaml:"report_caller"` // 是否输出文件名和行号
	FilePath     string `json:"file_path" yaml:"file_path"`         // 非空时同时写入该文件(JSON)
}

// Init 初始化日志系统，同时把 hertz 的 hlog 桥接到同一个 zerolog 实例
// 返回的 io.Closer 用于关闭日志文件，未配置文件时为 nil
func Init(config Config) (io.Closer, error) {
	level, err := zerolog.ParseLevel(config.Level)
	if err != nil || config.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if config.TimeFormat == "" {
		zerolog.TimeFieldFormat = time.RFC3339
	} else {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	var console io.Writer = os.Stdout
	if config.Format == "pretty" {
		console = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: config.TimeFormat,
		}
	}

	var closer io.Closer
	output := console
	if config.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}
		fileWriter, err := os.OpenFile(config.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("无法打开日志文件 %s: %w", config.FilePath, err)
		}
		output = zerolog.MultiLevelWriter(console, fileWriter)
		closer = fileWriter
	}

	contextLogger := zerolog.New(output).Level(level).With().Timestamp()
	if config.ReportCaller {
		contextLogger = contextLogger.Caller()
	}

	Logger = contextLogger.Logger()
	log.Logger = Logger

	hlog.SetLogger(hertzadapter.From(Logger))
	hlog.SetLevel(hertzLevel(level))
	return closer, nil
}

func hertzLevel(level zerolog.Level) hlog.Level {
	switch level {
	case zerolog.TraceLevel:
		return hlog.LevelTrace
	case zerolog.DebugLevel:
		return hlog.LevelDebug
	case zerolog.WarnLevel:
		return hlog.LevelWarn
	case zerolog.ErrorLevel:
		return hlog.LevelError
	case zerolog.FatalLevel, zerolog.PanicLevel:
		return hlog.LevelFatal
	default:
		return hlog.LevelInfo
	}
}

// Component 返回带 component 字段的子日志实例
func Component(name string) *zerolog.Logger {
	l := Logger.With().Str("component", name).Logger()
	return &l
}

// Debug 开始一条调试级别的日志事件
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info 开始一条信息级别的日志事件
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn 开始一条警告级别的日志事件
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error 开始一条错误级别的日志事件
func Error() *zerolog.Event {
	return Logger.Error()
}

// Fatal 开始一条致命错误级别的日志事件，记录后程序将退出
func Fatal() *zerolog.Event {
	return Logger.Fatal()
}

// Ctx 从上下文中获取日志记录器
func Ctx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext 将全局日志记录器添加到上下文中
func WithContext(ctx context.Context) context.Context {
	return Logger.WithContext(ctx)
}
