package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// NotifyChannel 是导出结果的 Redis Pub/Sub 频道，API 的 WebSocket 端点订阅它。
const NotifyChannel = "cv_notify"

// 导出状态。
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// ExportNotifyMessage 是推送给前端的导出结果。
type ExportNotifyMessage struct {
	Status        string `json:"status"`
	ObjectKey     string `json:"object_key,omitempty"`
	URL           string `json:"url,omitempty"`
	CorrelationID string `json:"correlation_id"`
	ErrorCode     int    `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
}

// Publisher 是 Redis 发布能力，*redis.Client 满足该接口。
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// PublishNotify 把消息发布到 NotifyChannel。
func PublishNotify(ctx context.Context, pub Publisher, msg ExportNotifyMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	if err := pub.Publish(ctx, NotifyChannel, data).Err(); err != nil {
		return fmt.Errorf("publish notification to %q: %w", NotifyChannel, err)
	}
	return nil
}
