package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartCV/internal/database"
)

// GormStore 把记录保存在 cv_state 表中，每个键一行。
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 使用已迁移的连接创建存储。
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context, key string) ([]byte, error) {
	var rec database.StateRecord
	err := s.db.WithContext(ctx).Where("record_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}
	return []byte(rec.Value), nil
}

func (s *GormStore) Save(ctx context.Context, key string, data []byte) error {
	rec := database.StateRecord{Key: key, Value: datatypes.JSON(data), UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}
