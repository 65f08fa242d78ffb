package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"smartCV/internal/config"
	"smartCV/internal/persist"
	"smartCV/internal/session"
	"smartCV/internal/storage"
)

// openSession 连接配置的存储后端并恢复会话。返回的 close 写出待写快照并释放连接。
func openSession(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*session.Session, func(context.Context) error, error) {
	var (
		backends persist.Backends
		closers  []func() error
	)
	switch cfg.Storage.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		backends.Redis = client
		closers = append(closers, client.Close)
	case config.BackendMinIO:
		client, err := storage.NewClient(ctx, cfg.MinIO)
		if err != nil {
			return nil, nil, fmt.Errorf("init storage client: %w", err)
		}
		backends.Objects = client
	}

	store, closeStore, err := persist.Open(cfg, backends)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, nil, err
	}
	closers = append([]func() error{closeStore}, closers...)

	writer := persist.NewWriter(store, cfg.Storage.Debounce, logger)
	sess := session.New(session.Options{Writer: writer, Logger: logger})
	if err := sess.Restore(ctx, store); err != nil {
		_ = closeAll(closers)
		return nil, nil, fmt.Errorf("restore session: %w", err)
	}

	closeFn := func(ctx context.Context) error {
		flushErr := writer.Close(ctx)
		return errors.Join(flushErr, closeAll(closers))
	}
	return sess, closeFn, nil
}

func closeAll(closers []func() error) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
