package database

import (
	"time"

	"gorm.io/datatypes"
)

// StateRecord 保存一条持久化记录（文档、配置或用户配色方案），以记录名为主键。
type StateRecord struct {
	Key       string         `gorm:"column:record_key;primaryKey;size:64"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName 固定表名。
func (StateRecord) TableName() string {
	return "cv_state"
}
