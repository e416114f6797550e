// Package outbox 发件箱中继：轮询 outbox_messages 并投递到 RabbitMQ
package outbox

import (
	"context"
	"sync"
	"time"

	"cv-maker-go/internal/config"
	"cv-maker-go/internal/logger"
	"cv-maker-go/internal/storage/models"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPollingInterval = 5 * time.Second
	defaultBatchSize       = 10
	defaultMaxRetries      = 5
)

// Publisher 消息发布器
type Publisher interface {
	PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error
}

// MessageRelay 轮询 outbox 表并将消息发布到消息代理
type MessageRelay struct {
	db              *gorm.DB
	publisher       Publisher
	logger          *zerolog.Logger
	pollingInterval time.Duration
	batchSize       int
	maxRetries      int
	tracer          trace.Tracer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMessageRelay 创建中继，cfg 中未设置的字段使用默认值
func NewMessageRelay(db *gorm.DB, publisher Publisher, cfg config.OutboxConfig) *MessageRelay {
	r := &MessageRelay{
		db:              db,
		publisher:       publisher,
		logger:          logger.Component("outbox"),
		pollingInterval: defaultPollingInterval,
		batchSize:       defaultBatchSize,
		maxRetries:      defaultMaxRetries,
		tracer:          otel.Tracer("cv-maker-go/outbox"),
	}
	if d := config.GetDuration(cfg.PollInterval, defaultPollingInterval); d > 0 {
		r.pollingInterval = d
	}
	if cfg.BatchSize > 0 {
		r.batchSize = cfg.BatchSize
	}
	if cfg.MaxRetries > 0 {
		r.maxRetries = cfg.MaxRetries
	}
	return r
}

// Start 在后台开始轮询，ctx 取消或调用 Stop 时退出
func (r *MessageRelay) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	ticker := time.NewTicker(r.pollingInterval)
	r.logger.Info().Dur("interval", r.pollingInterval).Int("batch", r.batchSize).Msg("MessageRelay 启动")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				r.logger.Info().Msg("MessageRelay 已停止")
				return
			case <-ticker.C:
				if err := r.processPendingMessages(ctx); err != nil && ctx.Err() == nil {
					r.logger.Error().Err(err).Msg("处理待发布消息失败")
				}
			}
		}
	}()
}

// Stop 停止轮询并等待当前批次结束
func (r *MessageRelay) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

// processPendingMessages 取一批待发布消息，逐条发布并更新状态
func (r *MessageRelay) processPendingMessages(ctx context.Context) error {
	var messages []models.OutboxMessage

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	// SKIP LOCKED 让多个实例各取不同的行
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", models.OutboxStatusPending).
		Order("created_at asc").
		Limit(r.batchSize).
		Find(&messages).Error
	if err != nil {
		return err
	}

	// 空轮询不建 span
	if len(messages) == 0 {
		return tx.Commit().Error
	}

	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(attribute.Int("messaging.batch.message_count", len(messages))),
	)
	defer span.End()

	for i := range messages {
		msg := &messages[i]
		pubErr := r.publisher.PublishMessage(ctx, msg.TargetExchange, msg.TargetRoutingKey, []byte(msg.Payload), true)
		applyPublishResult(msg, pubErr, r.maxRetries, time.Now())
		if pubErr != nil {
			r.logger.Warn().Err(pubErr).Str("id", msg.ID).Int("retry", msg.RetryCount).Str("status", msg.Status).Msg("消息发布失败")
		}

		// 更新失败时整批回滚，下次轮询重新拾取
		if err := tx.Save(msg).Error; err != nil {
			return err
		}
	}

	r.logger.Debug().Int("count", len(messages)).Msg("发件箱批次处理完成")
	return tx.Commit().Error
}

// applyPublishResult 根据发布结果更新消息状态
func applyPublishResult(msg *models.OutboxMessage, pubErr error, maxRetries int, now time.Time) {
	if pubErr == nil {
		msg.Status = models.OutboxStatusSent
		msg.ProcessedAt = &now
		msg.ErrorMessage = ""
		return
	}
	msg.RetryCount++
	msg.ErrorMessage = pubErr.Error()
	if msg.RetryCount >= maxRetries {
		msg.Status = models.OutboxStatusFailed
		msg.ProcessedAt = &now
	}
}
