// Package main runs the room orchestrator HTTP server with WebSocket status push and graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roomcast/orchestrator/config"
	"github.com/roomcast/orchestrator/internal/callbacks"
	"github.com/roomcast/orchestrator/internal/compositions"
	"github.com/roomcast/orchestrator/internal/middleware"
	"github.com/roomcast/orchestrator/internal/platform"
	"github.com/roomcast/orchestrator/internal/realtime"
	"github.com/roomcast/orchestrator/internal/recordings"
	"github.com/roomcast/orchestrator/internal/rooms"
	"github.com/roomcast/orchestrator/internal/token"
	"github.com/roomcast/orchestrator/internal/worker"
	"github.com/roomcast/orchestrator/pkg/queue"
	"github.com/roomcast/orchestrator/pkg/redis"
	"github.com/roomcast/orchestrator/pkg/response"
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

	// Redis is optional: without it events stay on this instance and archiving is off.
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("redis disabled", zap.Error(err))
		rdb = nil
	} else {
		defer rdb.Close()
	}

	var s3Client *storage.S3
	if cfg.AWS.Region != "" && cfg.AWS.CompositionsBucket != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			CompositionsBucket:   cfg.AWS.CompositionsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
			s3Client = nil
		}
	}

	var hub *realtime.Hub
	if rdb != nil {
		redisPubSub := realtime.NewRedisPubSub(rdb.Client, logger)
		hub = realtime.NewHub(logger, redisPubSub, redisPubSub)
	} else {
		hub = realtime.NewHub(logger, nil, nil)
	}

	callbackURL := cfg.Platform.StatusCallbackURL()
	if callbackURL == "" {
		logger.Warn("PUBLIC_BASE_URL not set; rooms and compositions are created without status callbacks")
	}
	issuer := token.NewIssuer(cfg.Platform.AccountSID, cfg.Platform.APIKeySID, cfg.Platform.APIKeySecret, cfg.Token.TTL())

	// Rooms
	roomSvc := rooms.NewService(api, callbackURL, logger)
	roomHandler := rooms.NewHandler(roomSvc, issuer, logger)

	// Recordings
	recordingSvc := recordings.NewService(api, logger)
	recordingHandler := recordings.NewHandler(recordingSvc, logger)

	// Compositions, room view and media resolution
	compositionSvc := compositions.NewService(api, callbackURL, logger)
	compositionHandler := compositions.NewHandler(compositionSvc, logger)

	// Archive to S3 (needs both the queue and the bucket)
	var processor *worker.ArchiveProcessor
	if rdb != nil && s3Client != nil {
		jobQueue := queue.NewQueue(rdb.Client, logger)
		compositionHandler.SetArchive(jobQueue, s3Client)
		processor = worker.NewArchiveProcessor(compositionSvc, s3Client, jobQueue, logger)
	}

	callbackHandler := callbacks.NewWebhookHandler(hub, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins()))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{
			"status":  "ok",
			"redis":   rdb.Healthy(c.Request.Context()),
			"archive": processor != nil,
			"ws":      hub.Stats(),
		})
	})

	// Join (room ensure + participant token)
	router.POST("/join-room", roomHandler.Join)

	// Rooms
	router.GET("/rooms", roomHandler.List)
	router.GET("/rooms/view", compositionHandler.View)
	router.GET("/rooms/:sid", roomHandler.Get)
	router.POST("/rooms/:sid/complete", roomHandler.Complete)
	router.POST("/rooms/:sid/recording", recordingHandler.StartForRoom)
	router.GET("/rooms/:sid/recordings", recordingHandler.ListByRoom)
	router.POST("/rooms/:sid/compositions", compositionHandler.Create)

	// Recordings
	router.POST("/start-recording", recordingHandler.Start)
	router.GET("/recordings", recordingHandler.List)
	router.GET("/recordings/:sid", recordingHandler.Get)
	router.DELETE("/recordings/:sid", recordingHandler.Delete)

	// Compositions
	router.GET("/compositions", compositionHandler.List)
	router.GET("/compositions/:sid", compositionHandler.Get)
	router.DELETE("/compositions/:sid", compositionHandler.Delete)
	router.GET("/compositions/:sid/media", compositionHandler.Media)
	router.POST("/compositions/:sid/archive", compositionHandler.Archive)
	router.GET("/compositions/:sid/archive-url", compositionHandler.ArchiveURL)

	// Platform status callbacks (signature verified when PLATFORM_AUTH_TOKEN is set)
	if cfg.Platform.AuthToken == "" {
		logger.Warn("PLATFORM_AUTH_TOKEN not set; status callbacks are not signature-checked")
	}
	router.POST("/callbacks",
		middleware.PlatformSignature(cfg.Platform.AuthToken, cfg.Platform.PublicBase),
		callbackHandler.StatusCallback,
	)

	// WebSocket (room status events)
	router.GET("/ws", realtime.ServeWs(hub, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (composition archive to S3)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if processor != nil {
		go processor.Run(workerCtx)
		logger.Info("archive worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
