// Package main runs the composition archive worker (platform media to S3).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roomcast/orchestrator/config"
	"github.com/roomcast/orchestrator/internal/compositions"
	"github.com/roomcast/orchestrator/internal/platform"
	"github.com/roomcast/orchestrator/internal/worker"
	"github.com/roomcast/orchestrator/pkg/queue"
	"github.com/roomcast/orchestrator/pkg/redis"
	"github.com/roomcast/orchestrator/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if err := cfg.Platform.Validate(); err != nil {
		logger.Fatal("platform credentials", zap.Error(err))
	}
	if cfg.AWS.CompositionsBucket == "" {
		logger.Fatal("AWS_S3_COMPOSITIONS_BUCKET is required")
	}

	ctx := context.Background()
	api, err := platform.NewClient(platform.Config{
		BaseURL:      cfg.Platform.BaseURL,
		AccountSID:   cfg.Platform.AccountSID,
		APIKeySID:    cfg.Platform.APIKeySID,
		APIKeySecret: cfg.Platform.APIKeySecret,
		Timeout:      cfg.Platform.Timeout(),
	}, logger)
	if err != nil {
		logger.Fatal("platform client", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		CompositionsBucket:   cfg.AWS.CompositionsBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	resolver := compositions.NewService(api, "", logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewArchiveProcessor(resolver, s3Client, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		processor.Run(workerCtx)
		close(done)
	}()
	logger.Info("worker started", zap.String("queue", queue.QueueCompositions))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn("worker did not stop in time")
	}
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
