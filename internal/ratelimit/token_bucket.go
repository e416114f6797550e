package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket 实现令牌桶算法的限流器
type TokenBucket struct {
	rate           float64    // 每秒生成的令牌数
	capacity       float64    // 桶的容量
	tokens         float64    // 当前令牌数
	lastRefillTime time.Time  // 上次填充令牌的时间
	mutex          sync.Mutex // 互斥锁，保证并发安全
	now            func() time.Time
}

// NewTokenBucket 创建按每分钟请求数限流的令牌桶
// capacity<=0 时取 perMinute 的一半，至少为 1
func NewTokenBucket(perMinute int, capacity int) *TokenBucket {
	if capacity <= 0 {
		capacity = perMinute / 2
		if capacity <= 0 {
			capacity = 1
		}
	}

	return &TokenBucket{
		rate:           float64(perMinute) / 60.0,
		capacity:       float64(capacity),
		tokens:         float64(capacity), // 初始填满
		lastRefillTime: time.Now(),
		now:            time.Now,
	}
}

// refill 根据经过的时间填充令牌
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefillTime).Seconds()
	tb.lastRefillTime = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

// Allow 判断是否允许通过一个请求，消耗一个令牌
func (tb *TokenBucket) Allow() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		return true
	}
	return false
}

// RetryAfter 下一个令牌可用前需要等待的时间
func (tb *TokenBucket) RetryAfter() time.Duration {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 || tb.rate <= 0 {
		return 0
	}
	return time.Duration((1.0 - tb.tokens) / tb.rate * float64(time.Second))
}

// Wait 等待直到有令牌可用
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		if tb.Allow() {
			return nil
		}
		wait := tb.RetryAfter()
		if wait <= 0 {
			wait = 10 * time.Millisecond
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
