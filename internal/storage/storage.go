package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cv-maker-go/internal/config"
	"cv-maker-go/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖
// 未启用或初始化失败的组件为 nil，调用方需判空
type Storage struct {
	// 本地文件存储，始终可用
	Local *LocalStore

	// 对象存储
	MinIO *MinIO

	// 消息队列
	RabbitMQ *RabbitMQ

	// 关系型数据库
	MySQL *MySQL

	// 键值存储
	Redis *Redis
}

// NewStorage 按配置初始化各存储组件
// 外部组件初始化失败只记录警告；本地存储失败或 minio 后端不可用时返回错误
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	log := logger.Component("storage")

	local, err := NewLocalStore(cfg.Storage.LocalDir)
	if err != nil {
		return nil, fmt.Errorf("初始化本地存储失败: %w", err)
	}
	s := &Storage{Local: local}

	var initErrors []string
	record := func(name string, err error) {
		log.Warn().Err(err).Str("component", name).Msg("存储组件初始化失败")
		initErrors = append(initErrors, fmt.Sprintf("%s: %v", name, err))
	}

	if cfg.MinIO.Enabled {
		if s.MinIO, err = NewMinIO(&cfg.MinIO, logger.Component("minio")); err != nil {
			record("MinIO", err)
		}
	}

	if cfg.RabbitMQ.Enabled {
		if s.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ); err != nil {
			record("RabbitMQ", err)
		} else if err := s.setupTopology(&cfg.RabbitMQ); err != nil {
			record("RabbitMQ topology", err)
		}
	}

	if cfg.MySQL.Enabled {
		if s.MySQL, err = NewMySQL(&cfg.MySQL); err != nil {
			record("MySQL", err)
		}
	}

	if cfg.Redis.Enabled {
		if s.Redis, err = NewRedisAdapter(&cfg.Redis); err != nil {
			record("Redis", err)
		}
	}

	if cfg.Storage.Backend == config.StoreBackendMinIO && s.MinIO == nil {
		s.Close()
		return nil, fmt.Errorf("存储后端为 minio 但 MinIO 不可用: %s", strings.Join(initErrors, "; "))
	}

	if len(initErrors) > 0 {
		log.Warn().Str("failed", strings.Join(initErrors, "; ")).Msg("部分存储组件不可用，服务降级运行")
	}
	log.Info().
		Bool("minio", s.MinIO != nil).
		Bool("rabbitmq", s.RabbitMQ != nil).
		Bool("mysql", s.MySQL != nil).
		Bool("redis", s.Redis != nil).
		Str("local_dir", local.Dir()).
		Msg("存储初始化完成")
	return s, nil
}

// setupTopology 声明事件交换机与解析请求队列
func (s *Storage) setupTopology(cfg *config.RabbitMQConfig) error {
	if err := s.RabbitMQ.EnsureExchange(cfg.EventsExchange, "topic", true); err != nil {
		return err
	}
	if cfg.ParseRequestQueue == "" {
		return nil
	}
	if err := s.RabbitMQ.EnsureQueue(cfg.ParseRequestQueue, true); err != nil {
		return err
	}
	return s.RabbitMQ.BindQueue(cfg.ParseRequestQueue, cfg.EventsExchange, cfg.ParseRequestRoutingKey)
}

// Close 关闭所有连接
func (s *Storage) Close() error {
	var errs []error
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭RabbitMQ连接失败: %w", err))
		}
	}
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭MySQL连接失败: %w", err))
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭Redis连接失败: %w", err))
		}
	}
	// MinIO 客户端无需显式关闭
	return errors.Join(errs...)
}
