package middleware

import (
	"context"
	"testing"

	"cv-maker-go/internal/ratelimit"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
)

func newEngine() *server.Hertz {
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	h.Use(RequestID(), AccessLog())
	h.GET("/id", func(ctx context.Context, c *app.RequestContext) {
		c.String(consts.StatusOK, FromContext(ctx))
	})
	return h
}

func TestRequestID_Generated(t *testing.T) {
	h := newEngine()

	w := ut.PerformRequest(h.Engine, consts.MethodGet, "/id", nil)
	resp := w.Result()

	id := string(resp.Header.Peek(RequestIDHeader))
	assert.Len(t, id, 36)
	assert.Equal(t, id, string(resp.Body()), "ctx 中的请求ID应与响应头一致")
}

func TestRequestID_Propagated(t *testing.T) {
	h := newEngine()

	w := ut.PerformRequest(h.Engine, consts.MethodGet, "/id", nil,
		ut.Header{Key: RequestIDHeader, Value: "req-123"})
	resp := w.Result()

	assert.Equal(t, "req-123", string(resp.Header.Peek(RequestIDHeader)))
	assert.Equal(t, "req-123", string(resp.Body()))
}

func TestFromContext_Missing(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))
}

func TestRateLimit(t *testing.T) {
	bucket := ratelimit.NewTokenBucket(1, 1)
	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	h.GET("/limited", RateLimit(bucket), func(ctx context.Context, c *app.RequestContext) {
		c.String(consts.StatusOK, "ok")
	})

	first := ut.PerformRequest(h.Engine, consts.MethodGet, "/limited", nil).Result()
	assert.Equal(t, consts.StatusOK, first.StatusCode())

	second := ut.PerformRequest(h.Engine, consts.MethodGet, "/limited", nil).Result()
	assert.Equal(t, consts.StatusTooManyRequests, second.StatusCode())
	assert.JSONEq(t, `{"error":"too many requests"}`, string(second.Body()))

	retry := string(second.Header.Peek("Retry-After"))
	assert.NotEmpty(t, retry)
}
