package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cv-maker-go/internal/config"
	"cv-maker-go/internal/logger"
	"cv-maker-go/internal/tracing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MessageQueue 消息队列接口
type MessageQueue interface {
	// 发布消息
	PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error

	// 发布JSON格式消息
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error

	// 确保交换机存在
	EnsureExchange(exchangeName, exchangeType string, durable bool) error

	// 确保队列存在
	EnsureQueue(queueName string, durable bool) error

	// 绑定队列到交换机
	BindQueue(queueName, exchangeName, routingKey string) error

	// 关闭连接
	Close() error
}

var _ MessageQueue = (*RabbitMQ)(nil)

var rabbitTracer = otel.Tracer("cv-maker-go/storage/rabbitmq")

// RabbitMQ 提供消息队列功能
type RabbitMQ struct {
	conn        *amqp.Connection
	channelPool sync.Pool
	logger      *zerolog.Logger

	mu          sync.Mutex
	exchangeMap map[string]bool // 已声明的exchange
	queueMap    map[string]bool // 已声明的queue
	bindingMap  map[string]bool // 已创建的binding，key格式 "exchange:queue:routingKey"

	publishMutex sync.Mutex
	cfg          *config.RabbitMQConfig
}

// NewRabbitMQ 创建RabbitMQ客户端
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器: %w", err)
	}

	mq := &RabbitMQ{
		conn:        conn,
		logger:      logger.Component("rabbitmq"),
		exchangeMap: make(map[string]bool),
		queueMap:    make(map[string]bool),
		bindingMap:  make(map[string]bool),
		cfg:         cfg,
	}

	mq.channelPool = sync.Pool{
		New: func() interface{} {
			ch, errPool := conn.Channel()
			if errPool != nil {
				mq.logger.Error().Err(errPool).Msg("创建RabbitMQ通道失败")
				return nil
			}
			return ch
		},
	}

	testCh := mq.getChannel()
	if testCh == nil {
		conn.Close()
		return nil, fmt.Errorf("无法创建RabbitMQ通道")
	}
	mq.putChannel(testCh)

	mq.logger.Info().Msg("成功连接到RabbitMQ服务器")
	return mq, nil
}

// 获取可用通道，池中通道已关闭时重新创建
func (r *RabbitMQ) getChannel() *amqp.Channel {
	if v := r.channelPool.Get(); v != nil {
		if ch, ok := v.(*amqp.Channel); ok && ch != nil && !ch.IsClosed() {
			return ch
		}
	}
	ch, err := r.conn.Channel()
	if err != nil {
		r.logger.Error().Err(err).Msg("创建新RabbitMQ通道失败")
		return nil
	}
	return ch
}

// 归还通道到池
func (r *RabbitMQ) putChannel(ch *amqp.Channel) {
	if ch != nil && !ch.IsClosed() {
		r.channelPool.Put(ch)
	}
}

// Close 关闭连接
func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}

// EnsureExchange 确保exchange存在
func (r *RabbitMQ) EnsureExchange(exchangeName, exchangeType string, durable bool) error {
	if exchangeName == "" {
		return fmt.Errorf("exchange名称不能为空")
	}
	if exchangeName == "amq.default" || exchangeName == "default" {
		return fmt.Errorf("不能声明默认交换机 '%s'", exchangeName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.exchangeMap[exchangeName] {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	err := ch.ExchangeDeclare(
		exchangeName, // exchange名称
		exchangeType, // exchange类型
		durable,      // 持久化
		false,        // 自动删除
		false,        // 内部专用
		false,        // 非阻塞
		nil,          // 参数
	)
	if err != nil {
		return fmt.Errorf("声明exchange失败: %w", err)
	}

	r.exchangeMap[exchangeName] = true
	r.logger.Info().Str("exchange", exchangeName).Str("type", exchangeType).Msg("已确保exchange存在")
	return nil
}

// EnsureQueue 确保队列存在
func (r *RabbitMQ) EnsureQueue(queueName string, durable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queueMap[queueName] {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	_, err := ch.QueueDeclare(
		queueName, // 队列名称
		durable,   // 持久化
		false,     // 自动删除
		false,     // 独占
		false,     // 非阻塞
		nil,       // 参数
	)
	if err != nil {
		return fmt.Errorf("声明队列失败: %w", err)
	}

	r.queueMap[queueName] = true
	r.logger.Info().Str("queue", queueName).Msg("已确保队列存在")
	return nil
}

// BindQueue 绑定队列到exchange
func (r *RabbitMQ) BindQueue(queueName, exchangeName, routingKey string) error {
	bindingKey := fmt.Sprintf("%s:%s:%s", exchangeName, queueName, routingKey)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bindingMap[bindingKey] {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	if err := ch.QueueBind(queueName, routingKey, exchangeName, false, nil); err != nil {
		return fmt.Errorf("绑定队列到exchange失败: %w", err)
	}

	r.bindingMap[bindingKey] = true
	r.logger.Info().Str("queue", queueName).Str("exchange", exchangeName).Str("routing_key", routingKey).Msg("队列绑定完成")
	return nil
}

// amqpHeaderCarrier 让 otel propagator 读写 AMQP 消息头
type amqpHeaderCarrier amqp.Table

func (c amqpHeaderCarrier) Get(key string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return ""
}

func (c amqpHeaderCarrier) Set(key, value string) { c[key] = value }

func (c amqpHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// PublishMessage 发布消息到exchange，当前 trace 上下文写入消息头
func (r *RabbitMQ) PublishMessage(ctx context.Context, exchangeName, routingKey string, message []byte, persistent bool) error {
	ctx, span := rabbitTracer.Start(ctx, "RabbitMQ.Publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination", exchangeName),
			attribute.String("messaging.rabbitmq.routing_key", routingKey),
			attribute.Int("messaging.message_payload_size_bytes", len(message)),
		),
	)
	defer span.End()

	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	ch := r.getChannel()
	if ch == nil {
		err := fmt.Errorf("无法获取RabbitMQ通道")
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		return err
	}
	defer r.putChannel(ch)

	var deliveryMode uint8 = amqp.Transient
	if persistent {
		deliveryMode = amqp.Persistent
	}

	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, amqpHeaderCarrier(headers))

	err := ch.PublishWithContext(
		ctx,
		exchangeName, // exchange名
		routingKey,   // 路由键
		false,        // 强制
		false,        // 立即
		amqp.Publishing{
			Headers:      headers,
			DeliveryMode: deliveryMode,
			ContentType:  "application/json",
			Body:         message,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		return fmt.Errorf("发布消息失败: %w", err)
	}
	return nil
}

// PublishJSON 发布JSON格式的消息
func (r *RabbitMQ) PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("JSON序列化失败: %w", err)
	}
	return r.PublishMessage(ctx, exchangeName, routingKey, jsonData, persistent)
}

// MessageHandler 处理一条消息，返回 true 表示确认
type MessageHandler func(ctx context.Context, body []byte) bool

// StartConsumer 启动消费者，ctx 取消后停止；返回的通道在消费协程退出时关闭
// 处理失败的消息重新入队一次，再次失败则丢弃
func (r *RabbitMQ) StartConsumer(ctx context.Context, queueName string, prefetchCount int, handler MessageHandler) (<-chan struct{}, error) {
	ch := r.getChannel()
	if ch == nil {
		return nil, fmt.Errorf("无法获取RabbitMQ通道")
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("设置QoS失败: %w", err)
	}

	deliveries, err := ch.Consume(
		queueName, // 队列
		"",        // 消费者标签，由server生成
		false,     // 自动确认
		false,     // 独占
		false,     // 非本地
		false,     // 非阻塞
		nil,       // 参数
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("注册消费者失败: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		// 消费通道不归还到池
		defer ch.Close()

		r.logger.Info().Str("queue", queueName).Int("prefetch", prefetchCount).Msg("RabbitMQ消费者已启动")
		defer r.logger.Info().Str("queue", queueName).Msg("RabbitMQ消费者已停止")

		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					r.logger.Warn().Str("queue", queueName).Msg("RabbitMQ通道已关闭")
					return
				}
				r.handleDelivery(ctx, queueName, delivery, handler)
			}
		}
	}()

	return done, nil
}

func (r *RabbitMQ) handleDelivery(ctx context.Context, queueName string, delivery amqp.Delivery, handler MessageHandler) {
	msgCtx := otel.GetTextMapPropagator().Extract(ctx, amqpHeaderCarrier(delivery.Headers))
	msgCtx, span := rabbitTracer.Start(msgCtx, "RabbitMQ.Consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.source", queueName),
			attribute.Bool("messaging.rabbitmq.redelivered", delivery.Redelivered),
		),
	)
	defer span.End()

	if handler(msgCtx, delivery.Body) {
		if err := delivery.Ack(false); err != nil {
			r.logger.Error().Err(err).Msg("确认消息失败")
		}
		return
	}

	requeue := !delivery.Redelivered
	tracing.RecordRabbitMQNack(span, delivery.MessageId, "handler_failed")
	if err := delivery.Nack(false, requeue); err != nil {
		r.logger.Error().Err(err).Msg("拒绝消息失败")
	}
}
