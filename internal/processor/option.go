package processor

import (
	"strings"
	"time"

	"cv-maker-go/internal/config"
	"cv-maker-go/internal/storage"

	"github.com/rs/zerolog"
)

// Option CVProcessor 的配置选项
type Option func(*CVProcessor)

// WithExtractor 为扩展名注册提取器，扩展名不区分大小写且不带点
func WithExtractor(ext string, extractor TextExtractor) Option {
	return func(p *CVProcessor) {
		if extractor != nil {
			p.extractors[strings.ToLower(strings.TrimPrefix(ext, "."))] = extractor
		}
	}
}

// WithParser 替换文本解析器
func WithParser(parser TextParser) Option {
	return func(p *CVProcessor) {
		if parser != nil {
			p.parser = parser
		}
	}
}

// WithCache 设置解析结果缓存
func WithCache(cache ParseCache) Option {
	return func(p *CVProcessor) {
		p.cache = cache
	}
}

// WithArchive 设置原始文件归档
func WithArchive(archive OriginalArchive) Option {
	return func(p *CVProcessor) {
		p.archive = archive
	}
}

// WithRecorder 设置解析记录持久化，事件发布到 exchange/routingKey
func WithRecorder(recorder ParseRecorder, exchange, routingKey string) Option {
	return func(p *CVProcessor) {
		p.recorder = recorder
		p.eventExchange = exchange
		p.eventRoutingKey = routingKey
	}
}

// WithStorage 从存储聚合中接入已启用的组件
func WithStorage(s *storage.Storage, mq config.RabbitMQConfig) Option {
	return func(p *CVProcessor) {
		if s == nil {
			return
		}
		// 逐个判空，避免把 nil 指针存进接口
		if s.Redis != nil {
			p.cache = s.Redis
		}
		if s.MinIO != nil {
			p.archive = s.MinIO
		}
		if s.MySQL != nil {
			p.recorder = s.MySQL
			// 没有 RabbitMQ 时发件箱无人中继，只写解析记录
			if s.RabbitMQ != nil {
				p.eventExchange = mq.EventsExchange
				p.eventRoutingKey = mq.ParsedRoutingKey
			}
		}
	}
}

// WithCacheTTL 设置解析缓存时间
func WithCacheTTL(ttl time.Duration) Option {
	return func(p *CVProcessor) {
		if ttl > 0 {
			p.cacheTTL = ttl
		}
	}
}

// WithEngineName 记录在解析记录中的 PDF 引擎名
func WithEngineName(name string) Option {
	return func(p *CVProcessor) {
		p.engine = name
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *zerolog.Logger) Option {
	return func(p *CVProcessor) {
		if logger != nil {
			p.logger = logger
		}
	}
}
