package router

import (
	"context"
	"crypto/subtle"
	"path/filepath"

	"cv-maker-go/internal/api/handler"
	"cv-maker-go/internal/api/middleware"
	"cv-maker-go/internal/ratelimit"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
)

// APIKeyHeader 携带 API Key 的请求头
const APIKeyHeader = "X-API-Key"

// Options 路由配置
type Options struct {
	StaticDir string
	APIKeys   []string
	// 非 nil 时对 /api/parse 限流
	ParseLimiter *ratelimit.TokenBucket
	// 非 nil 时启用服务端追踪中间件，需与 server 创建时的 tracer 选项配套
	Tracing *hertztracing.Config
}

// RegisterRoutes 注册全部路由和中间件
func RegisterRoutes(h *server.Hertz, cvHandler *handler.CVHandler, opts Options) {
	if opts.Tracing != nil {
		h.Use(hertztracing.ServerMiddleware(opts.Tracing))
	}
	h.Use(middleware.RequestID(), middleware.AccessLog())

	h.GET("/health", cvHandler.Health)

	api := h.Group("/api")
	if len(opts.APIKeys) > 0 {
		api.Use(apiKeyAuth(opts.APIKeys))
	}
	if opts.ParseLimiter != nil {
		api.POST("/parse", middleware.RateLimit(opts.ParseLimiter), cvHandler.Parse)
	} else {
		api.POST("/parse", cvHandler.Parse)
	}
	api.POST("/save", cvHandler.Save)
	api.GET("/load", cvHandler.Load)
	api.GET("/list", cvHandler.List)

	if opts.StaticDir != "" {
		index := filepath.Join(opts.StaticDir, "index.html")
		h.GET("/", func(ctx context.Context, c *app.RequestContext) {
			c.File(index)
		})
		h.StaticFS("/", &app.FS{Root: opts.StaticDir, IndexNames: []string{"index.html"}})
	}
}

// apiKeyAuth 校验 X-API-Key
func apiKeyAuth(keys []string) app.HandlerFunc {
	return keyauth.New(
		keyauth.WithKeyLookUp("header:"+APIKeyHeader, ""),
		keyauth.WithValidator(func(_ context.Context, _ *app.RequestContext, key string) (bool, error) {
			for _, k := range keys {
				if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
					return true, nil
				}
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		}),
		keyauth.WithErrorHandler(func(_ context.Context, c *app.RequestContext, _ error) {
			c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "unauthorized"})
		}),
	)
}
