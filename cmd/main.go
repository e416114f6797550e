package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cv-maker-go/internal/api/handler"
	"cv-maker-go/internal/api/router"
	"cv-maker-go/internal/config"
	"cv-maker-go/internal/logger"
	"cv-maker-go/internal/outbox"
	"cv-maker-go/internal/processor"
	"cv-maker-go/internal/ratelimit"
	"cv-maker-go/internal/storage"
	"cv-maker-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	hertzconfig "github.com/cloudwego/hertz/pkg/common/config"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

func main() {
	var configPath, samplePath string
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径，为空时在默认位置查找")
	pflag.StringVar(&samplePath, "init-config", "", "写出示例配置文件后退出")
	pflag.Parse()

	if samplePath != "" {
		if err := config.CreateSampleConfig(samplePath); err != nil {
			glog.Fatalf("生成示例配置失败: %v", err)
		}
		glog.Infof("示例配置已写入 %s", samplePath)
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}

	logCloser, err := logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
		FilePath:     cfg.Logger.FilePath,
	})
	if err != nil {
		glog.Fatalf("初始化日志失败: %v", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing)
	if err != nil {
		glog.Fatalf("初始化追踪失败: %v", err)
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	glog.Info("存储服务初始化成功")

	extractorOpts, err := processor.BuildExtractorOptions(ctx, cfg, "")
	if err != nil {
		glog.Fatalf("初始化文档解码器失败: %v", err)
	}
	opts := append(extractorOpts,
		processor.WithStorage(storageManager, cfg.RabbitMQ),
		processor.WithCacheTTL(config.GetDuration(cfg.Parser.CacheTTL, 0)),
	)
	cvProcessor := processor.NewCVProcessor(opts...)
	glog.Infof("简历处理器初始化成功，PDF引擎: %s", cfg.Parser.PDFEngine)

	cvStore, err := processor.NewCVStoreFromStorage(storageManager, cfg.Storage.Backend)
	if err != nil {
		glog.Fatalf("初始化简历存储失败: %v", err)
	}

	var handlerOpts []handler.HandlerOption
	if storageManager.RabbitMQ != nil {
		handlerOpts = append(handlerOpts,
			handler.WithEventPublisher(storageManager.RabbitMQ, cfg.RabbitMQ.EventsExchange, cfg.RabbitMQ.ParsedRoutingKey))
	}
	cvHandler := handler.NewCVHandler(cvProcessor, cvStore, handlerOpts...)

	var relay *outbox.MessageRelay
	if storageManager.MySQL != nil && storageManager.RabbitMQ != nil {
		relay = outbox.NewMessageRelay(storageManager.MySQL.DB(), storageManager.RabbitMQ, cfg.Outbox)
		relay.Start(ctx)
		glog.Info("消息中继服务已启动")
	}

	var consumerDone <-chan struct{}
	if cfg.RabbitMQ.ConsumerEnabled && storageManager.RabbitMQ != nil {
		consumerDone, err = cvHandler.StartParseRequestConsumer(ctx, storageManager.RabbitMQ,
			cfg.RabbitMQ.ParseRequestQueue, cfg.RabbitMQ.PrefetchCount)
		if err != nil {
			glog.Fatalf("启动解析请求消费者失败: %v", err)
		}
	}

	serverOpts := []hertzconfig.Option{
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithExitWaitTime(config.GetDuration(cfg.Server.ShutdownTimeout, 5*time.Second)),
	}
	if cfg.Server.MaxUploadMB > 0 {
		serverOpts = append(serverOpts, server.WithMaxRequestBodySize(cfg.Server.MaxUploadMB<<20))
	}
	routeOpts := router.Options{StaticDir: cfg.Server.StaticDir, APIKeys: cfg.Server.APIKeys}
	if cfg.Server.ParseRatePerMinute > 0 {
		routeOpts.ParseLimiter = ratelimit.NewTokenBucket(cfg.Server.ParseRatePerMinute, cfg.Server.ParseBurst)
	}
	if cfg.Tracing.Enabled {
		tracer, tracerCfg := hertztracing.NewServerTracer()
		serverOpts = append(serverOpts, tracer)
		routeOpts.Tracing = tracerCfg
	}

	h := server.New(serverOpts...)
	h.Use(recovery.Recovery())
	router.RegisterRoutes(h, cvHandler, routeOpts)
	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			glog.Errorf("HTTP服务器退出: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}

	// 先停止消费和中继，再关闭连接
	cancel()
	if relay != nil {
		relay.Stop()
		glog.Info("消息中继服务已停止")
	}
	if consumerDone != nil {
		select {
		case <-consumerDone:
		case <-shutdownCtx.Done():
			glog.Warn("等待消费者退出超时")
		}
	}
	if err := storageManager.Close(); err != nil {
		glog.Errorf("关闭存储连接失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("关闭追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}
