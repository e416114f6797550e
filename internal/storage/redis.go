package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cv-maker-go/internal/config"
	"cv-maker-go/internal/constants"
	"cv-maker-go/internal/tracing"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound 键或对象不存在
var ErrNotFound = errors.New("storage: not found")

var redisTracer = otel.Tracer("cv-maker-go/storage/redis")

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		// 重试设置
		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,

		// 连接生命周期
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute,
	}

	client := redis.NewClient(opt)

	// 所有命令都经过 OpenTelemetry 钩子
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// GetMD5ExpireDuration 返回配置的MD5记录过期时间
func (r *Redis) GetMD5ExpireDuration() time.Duration {
	days := 0
	if r.config != nil {
		days = r.config.MD5RecordExpireDays
	}
	if days <= 0 {
		days = 365 // 默认1年
	}
	return time.Duration(days) * 24 * time.Hour
}

func (r *Redis) startSpan(ctx context.Context, name, operation, key string) (context.Context, trace.Span) {
	ctx, span := redisTracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindClient))
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", operation),
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
	}
	if r.config != nil {
		attrs = append(attrs,
			attribute.Int("db.redis.database", r.config.DB),
			attribute.String("net.peer.name", r.config.Address),
		)
	}
	span.SetAttributes(attrs...)
	return ctx, span
}

// CheckFileMD5Exists 检查文件MD5是否出现过
func (r *Redis) CheckFileMD5Exists(ctx context.Context, md5Hex string) (bool, error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis client is not initialized")
	}
	return r.Client.SIsMember(ctx, constants.KeyFileMD5Set, md5Hex).Result()
}

// CheckAndAddFileMD5 原子地检查并添加文件MD5，返回添加前是否已存在
func (r *Redis) CheckAndAddFileMD5(ctx context.Context, md5Hex string) (exists bool, err error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis client is not initialized")
	}
	ctx, span := r.startSpan(ctx, "Redis.CheckAndAddFileMD5", "EVAL", constants.KeyFileMD5Set)
	defer span.End()

	script := `
		local exists = redis.call('SISMEMBER', KEYS[1], ARGV[1])
		redis.call('SADD', KEYS[1], ARGV[1])
		if redis.call('TTL', KEYS[1]) < 0 then
			redis.call('EXPIRE', KEYS[1], ARGV[2])
		end
		return exists
	`
	expiry := int64(r.GetMD5ExpireDuration().Seconds())

	res, err := r.Client.Eval(ctx, script, []string{constants.KeyFileMD5Set}, md5Hex, expiry).Result()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, fmt.Errorf("执行原子检查和添加操作失败: %w", err)
	}

	existsVal, ok := res.(int64)
	if !ok {
		err := fmt.Errorf("意外的Redis返回类型: %T", res)
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return false, err
	}

	exists = existsVal == 1
	span.SetAttributes(attribute.Bool("already_exists", exists))
	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// GetParseResult 读取按文件MD5缓存的解析结果JSON，未命中返回 ErrNotFound
func (r *Redis) GetParseResult(ctx context.Context, md5Hex string) ([]byte, error) {
	if r.Client == nil {
		return nil, fmt.Errorf("redis客户端未初始化")
	}
	key := fmt.Sprintf(constants.KeyParseResult, md5Hex)
	ctx, span := r.startSpan(ctx, "Redis.GetParseResult", "GET", key)
	defer span.End()

	val, err := r.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		span.SetAttributes(attribute.Bool("db.redis.key_exists", false))
		return nil, ErrNotFound
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return nil, fmt.Errorf("读取解析缓存失败: %w", err)
	}

	span.SetAttributes(
		attribute.Bool("db.redis.key_exists", true),
		attribute.Int("db.redis.value_length", len(val)),
	)
	return val, nil
}

// SetParseResult 写入解析结果缓存，ttl<=0 时使用默认值
func (r *Redis) SetParseResult(ctx context.Context, md5Hex string, data []byte, ttl time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	if ttl <= 0 {
		ttl = constants.DefaultParseCacheTTL
	}
	key := fmt.Sprintf(constants.KeyParseResult, md5Hex)
	ctx, span := r.startSpan(ctx, "Redis.SetParseResult", "SET", key)
	defer span.End()
	span.SetAttributes(
		attribute.Int("db.redis.value_length", len(data)),
		attribute.Int64("db.redis.expiration_ms", ttl.Milliseconds()),
	)

	if err := r.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return fmt.Errorf("写入解析缓存失败: %w", err)
	}
	return nil
}
