package persist

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"smartCV/internal/config"
	"smartCV/internal/database"
)

// RedisKeyPrefix 是 Redis 后端的键前缀。
const RedisKeyPrefix = "smartcv:"

// Backends 是按需创建的共享客户端；对应后端未启用时可以为 nil。
type Backends struct {
	Redis   redis.UniversalClient
	Objects ObjectClient
}

// Open 按 cfg.Storage.Backend 创建存储。返回的 close 函数释放 Open 自己建立的连接。
func Open(cfg *config.Config, b Backends) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), noop, nil
	case config.BackendFile:
		s, err := NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case config.BackendRedis:
		if b.Redis == nil {
			return nil, nil, fmt.Errorf("storage backend %q requires a redis client", cfg.Storage.Backend)
		}
		return NewRedisStore(b.Redis, RedisKeyPrefix), noop, nil
	case config.BackendPostgres:
		db, err := database.InitDatabase(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("get sql db: %w", err)
		}
		return NewGormStore(db), sqlDB.Close, nil
	case config.BackendMinIO:
		if b.Objects == nil {
			return nil, nil, fmt.Errorf("storage backend %q requires an object storage client", cfg.Storage.Backend)
		}
		return NewObjectStore(b.Objects), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
