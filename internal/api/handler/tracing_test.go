package handler

import (
	"context"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"cv-maker-go/internal/config"
	"cv-maker-go/internal/processor"
	"cv-maker-go/internal/storage"
)

func spanAttrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestErrorResponsesRecordedOnSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	local, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	store, err := processor.NewCVStoreFromStorage(&storage.Storage{Local: local}, config.StoreBackendLocal)
	require.NoError(t, err)
	cvHandler := NewCVHandler(processor.NewCVProcessor(), store)

	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	h.Use(func(ctx context.Context, c *app.RequestContext) {
		ctx, span := tp.Tracer("test").Start(ctx, "request")
		defer span.End()
		c.Next(ctx)
	})
	h.GET("/api/load", cvHandler.Load)
	h.GET("/api/list", cvHandler.List)

	tests := []struct {
		path     string
		status   int
		category string
	}{
		{path: "/api/load", status: consts.StatusBadRequest, category: "client_error"},
		{path: "/api/load?filename=cv_missing.json", status: consts.StatusNotFound, category: "client_error"},
	}
	for i, tt := range tests {
		resp := ut.PerformRequest(h.Engine, consts.MethodGet, tt.path, nil).Result()
		assert.Equal(t, tt.status, resp.StatusCode(), tt.path)

		spans := recorder.Ended()
		require.Len(t, spans, i+1, tt.path)
		last := spans[i]
		attrs := spanAttrs(last)
		assert.Equal(t, codes.Error, last.Status().Code, tt.path)
		assert.Equal(t, int64(tt.status), attrs["http.status_code"].AsInt64(), tt.path)
		assert.Equal(t, tt.category, attrs["error.category"].AsString(), tt.path)
		assert.Equal(t, "http", attrs["error.type"].AsString(), tt.path)
	}

	resp := ut.PerformRequest(h.Engine, consts.MethodGet, "/api/list", nil).Result()
	assert.Equal(t, consts.StatusOK, resp.StatusCode())
	spans := recorder.Ended()
	require.Len(t, spans, len(tests)+1)
	assert.NotEqual(t, codes.Error, spans[len(tests)].Status().Code, "成功请求不应标记错误")
}
