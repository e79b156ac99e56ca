// Package entity 定义持久化实体的公共脚手架
//
// 设计原则：
// 1. 身份字段可空 - 首次持久化前为 nil，由仓储负责赋值
// 2. 时间戳属于存储层 - 由仓储在写入时填充，服务层从不读写
// 3. 组合优于继承 - 通过嵌入 Entity 获得身份与元数据
package entity

import (
	"time"

	"tourneycompanion/domain"
)

// ITimestamped 支持写入时间戳的实体
// 仓储在保存前通过接口断言调用 Touch
type ITimestamped interface {
	// Touch 在写入时调用：CreatedAt 为零值时设置为 now，UpdatedAt 总是设置为 now
	Touch(now time.Time)

	// Timestamps 返回可修改的时间戳
	Timestamps() *Metadata
}

// Metadata 创建与最后修改时间（用于嵌入）
type Metadata struct {
	CreatedAt time.Time `json:"created_at" db:"created_timestamp"`
	UpdatedAt time.Time `json:"last_modified_at" db:"last_modified_timestamp"`
}

// Touch 实现 ITimestamped 接口
func (m *Metadata) Touch(now time.Time) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

// Timestamps 实现 ITimestamped 接口
func (m *Metadata) Timestamps() *Metadata {
	return m
}

// Entity 带身份与时间戳的实体基类（用于嵌入）
type Entity struct {
	ID *int64 `json:"id,omitempty" db:"id"`
	Metadata
}

// GetID 实现 domain.IIdentified 接口
func (e *Entity) GetID() *int64 {
	return e.ID
}

// SetID 实现 domain.IIdentified 接口
func (e *Entity) SetID(id *int64) {
	e.ID = id
}

var (
	_ domain.IIdentified = (*Entity)(nil)
	_ ITimestamped       = (*Entity)(nil)
)
