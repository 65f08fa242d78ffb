package persist

import (
	"context"
	"fmt"

	"smartCV/internal/storage"
)

// ObjectClient 是 ObjectStore 需要的对象存储能力，由 *storage.Client 实现。
type ObjectClient interface {
	PutBytes(ctx context.Context, objectName string, data []byte, contentType string) error
	GetBytes(ctx context.Context, objectKey string) ([]byte, error)
}

// ObjectStore 把记录保存为 state/<key>.json 对象。
type ObjectStore struct {
	client ObjectClient
}

// NewObjectStore 创建对象存储后端。
func NewObjectStore(client ObjectClient) *ObjectStore {
	return &ObjectStore{client: client}
}

func objectKey(key string) string {
	return storage.PrefixState + key + ".json"
}

func (s *ObjectStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.GetBytes(ctx, objectKey(key))
	if storage.IsNoSuchKey(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load object %s: %w", key, err)
	}
	return data, nil
}

func (s *ObjectStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.PutBytes(ctx, objectKey(key), data, "application/json"); err != nil {
		return fmt.Errorf("save object %s: %w", key, err)
	}
	return nil
}
