package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"smartCV/internal/api/middleware"
	"smartCV/internal/errcode"
)

const suggestRateKeyPrefix = "cv_rate:suggest:"

type redisRateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

// SuggestRateLimit 以分钟为窗口限制推荐请求数。client 为 nil 或 limit 为 0 时不限流；
// Redis 不可用时放行并记录日志。
func SuggestRateLimit(client redisRateCounter, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		window := time.Now().UTC().Truncate(time.Minute)
		key := fmt.Sprintf("%s%d", suggestRateKeyPrefix, window.Unix())
		count, err := incrWithTTL(c.Request.Context(), client, key, 2*time.Minute)
		if err != nil {
			middleware.LoggerFromContext(c).Warn("rate counter unavailable", slog.Any("error", err))
			c.Next()
			return
		}
		if count > int64(limit) {
			c.Header("Retry-After", fmt.Sprint(int(time.Until(window.Add(time.Minute)).Seconds())+1))
			Error(c, http.StatusTooManyRequests, errcode.TooManyRequests, "too many suggestion requests")
			return
		}
		c.Next()
	}
}
