package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/d60-Lab/tieba/config"
	"github.com/d60-Lab/tieba/internal/api/handler"
	"github.com/d60-Lab/tieba/internal/api/router"
	"github.com/d60-Lab/tieba/internal/pubsub"
	"github.com/d60-Lab/tieba/internal/repository"
	"github.com/d60-Lab/tieba/internal/service"
	"github.com/d60-Lab/tieba/pkg/auth"
	"github.com/d60-Lab/tieba/pkg/database"
	"github.com/d60-Lab/tieba/pkg/logger"
	"github.com/d60-Lab/tieba/pkg/tracing"
)

// @title Tieba API
// @version 1.0
// @description 吧、帖子、关系链、私信与通知
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment only")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
			AttachStacktrace: true,
		}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, cfg.Tracing)
		if err != nil {
			logger.Warn("tracing init failed", zap.Error(err))
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("init database", zap.Error(err))
		os.Exit(1)
	}
	defer func() { _ = database.Close(db) }()

	var publisher service.Publisher
	if cfg.Redis.Enabled() {
		client, err := pubsub.NewClient(ctx, cfg.Redis)
		if err != nil {
			// 实时推送不可用时通知照常落库
			logger.Warn("redis unavailable, realtime push disabled", zap.Error(err))
		} else {
			defer func() { _ = client.Close() }()
			publisher = pubsub.NewRedisPublisher(client, cfg.Redis.ChannelPrefix)
		}
	}

	dispatcher := service.NewNotificationDispatcher(repository.NewNotificationRepository(db), publisher, cfg.Notifier.QueueSize)
	stopNotifier := dispatcher.Start(cfg.Notifier.Workers)

	tokens := auth.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expire)
	services := service.New(db, dispatcher, tokens)
	engine, err := router.New(cfg, handler.New(services), tokens)
	if err != nil {
		logger.Error("init router", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	// 先停 HTTP 再排空通知队列
	if err := stopNotifier(shutdownCtx); err != nil {
		logger.Warn("notifier drain incomplete", zap.Error(err))
	}
}
