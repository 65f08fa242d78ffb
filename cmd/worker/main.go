package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"smartCV/internal/config"
	"smartCV/internal/logging"
	"smartCV/internal/metrics"
	"smartCV/internal/pdf"
	"smartCV/internal/render"
	"smartCV/internal/storage"
	"smartCV/internal/tasks"
	"smartCV/internal/worker"
)

// 每个任务启动独立的 Chromium，并发度保持较低。
const concurrency = 2

func main() {
	cfg := config.MustLoad()
	logger := logging.Init(cfg.Log.Level, cfg.Log.Format)
	ctx := context.Background()

	storageClient, err := storage.NewClient(ctx, cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

	redisAddr := cfg.Redis.Addr()
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	printer := pdf.NewGenerator(cfg.Export.BrowserBin, render.RenderReadyID, logger)
	printer.Timeout = cfg.Export.Timeout

	server := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{
		Concurrency: concurrency,
		Logger:      newAsynqLogger(logger),
	})

	pdfHandler := worker.NewPDFTaskHandler(printer, storageClient, redisClient, logger, cfg.Export.URLExpiry)

	if cfg.Export.MetricsAddr != "" {
		go serveMetrics(cfg.Export.MetricsAddr, logger)
	}

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypePDFRender, pdfHandler)

	logger.Info("worker service started", slog.String("redis_addr", redisAddr))
	if err := server.Run(mux); err != nil {
		logger.Error("worker server stopped", slog.Any("error", err))
	}
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("worker metrics listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", slog.Any("error", err))
	}
}
