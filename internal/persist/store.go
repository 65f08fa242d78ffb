// Package persist 保存文档、配置与用户配色方案三条记录。
package persist

import (
	"context"
	"errors"
	"sync"
)

// 三条持久化记录的键。
const (
	KeyDocument = "cv_builder_data"
	KeyConfig   = "cv_builder_config"
	KeyProfiles = "cv_builder_profiles"
)

// ErrNotFound 表示记录从未保存过。
var ErrNotFound = errors.New("persist: record not found")

// Store 是键值形式的持久化后端。
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// MemoryStore 进程内存储，用于测试和 memory 后端。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore 创建空的内存存储。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (m *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}
