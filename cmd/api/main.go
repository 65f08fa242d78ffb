package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"smartCV/internal/api"
	"smartCV/internal/config"
	"smartCV/internal/logging"
	"smartCV/internal/pdf"
	"smartCV/internal/persist"
	"smartCV/internal/profile"
	"smartCV/internal/render"
	"smartCV/internal/session"
	"smartCV/internal/storage"
	"smartCV/internal/suggest"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.MustLoad()
	logger := logging.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.NeedsRedis() {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("close redis client failed", slog.Any("error", err))
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("ping redis: %v", err)
		}
		logger.Info("redis connection ready", slog.String("addr", cfg.Redis.Addr()))
	}

	var storageClient *storage.Client
	if cfg.NeedsMinIO() {
		var err error
		storageClient, err = storage.NewClient(ctx, cfg.MinIO)
		if err != nil {
			log.Fatalf("init storage client: %v", err)
		}
		logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))
	}

	backends := persist.Backends{}
	if redisClient != nil {
		backends.Redis = redisClient
	}
	if storageClient != nil {
		backends.Objects = storageClient
	}
	store, closeStore, err := persist.Open(cfg, backends)
	if err != nil {
		log.Fatalf("open %s store: %v", cfg.Storage.Backend, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("close store failed", slog.Any("error", err))
		}
	}()
	writer := persist.NewWriter(store, cfg.Storage.Debounce, logger)

	var generator suggest.Generator
	if cfg.AI.APIKey != "" {
		gemini, err := suggest.NewGeminiGenerator(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			log.Fatalf("init gemini client: %v", err)
		}
		defer gemini.Close()
		generator = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, suggestions fall back to defaults")
	}

	sess := session.New(session.Options{
		Writer:    writer,
		Suggester: suggest.NewService(generator, logger),
		Profiles:  profile.NewRegistry(),
		Logger:    logger,
	})
	if err := sess.Restore(ctx, store); err != nil {
		logger.Error("restore session failed, starting from defaults", slog.Any("error", err))
	}

	printer := pdf.NewGenerator(cfg.Export.BrowserBin, render.RenderReadyID, logger)
	printer.Timeout = cfg.Export.Timeout

	deps := api.Deps{
		Session:          sess,
		Printer:          printer,
		Scanner:          api.NewClamdScanner(cfg.Clamd.Address),
		Logger:           logger,
		MaxUploadBytes:   int64(cfg.API.MaxUploadMB) << 20,
		SuggestPerMinute: cfg.AI.RateLimit,
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}
	if storageClient != nil {
		deps.Assets = storageClient
	}
	if cfg.Export.Async {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})
		defer asynqClient.Close()
		deps.Tasks = asynqClient
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("api listening", slog.String("addr", server.Addr), slog.String("storage", cfg.Storage.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start api server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", slog.Any("error", err))
	}
	if err := writer.Close(shutdownCtx); err != nil {
		logger.Error("flush pending state failed", slog.Any("error", err))
	}
}
