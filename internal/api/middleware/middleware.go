package middleware

import (
	"context"
	"math"
	"strconv"
	"time"

	"cv-maker-go/internal/ratelimit"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
)

// RequestIDHeader 请求ID头
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID 沿用客户端传入的请求ID，没有时生成一个，并回写到响应头
func RequestID() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		id := string(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Response.Header.Set(RequestIDHeader, id)
		c.Next(context.WithValue(ctx, requestIDKey{}, id))
	}
}

// FromContext 读取请求ID
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// AccessLog 请求结束后通过 hlog 记录一条访问日志
func AccessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		status := c.Response.StatusCode()
		latency := time.Since(start)

		logf := hlog.CtxInfof
		if status >= 500 {
			logf = hlog.CtxErrorf
		}
		logf(ctx, "%s %s status=%d latency=%s request_id=%s",
			c.Method(), c.Request.URI().PathOriginal(), status, latency, c.GetString(RequestIDHeader))
	}
}

// RateLimit 令牌耗尽时返回 429 并带上 Retry-After
func RateLimit(bucket *ratelimit.TokenBucket) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		if bucket.Allow() {
			c.Next(ctx)
			return
		}
		retry := int(math.Ceil(bucket.RetryAfter().Seconds()))
		if retry < 1 {
			retry = 1
		}
		c.Response.Header.Set("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(consts.StatusTooManyRequests, utils.H{"error": "too many requests"})
	}
}
