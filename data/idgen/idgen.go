// Package idgen 提供记录 ID 生成器：进程内自增序列与雪花算法
package idgen

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Generator ID 生成器
type Generator interface {
	NextID() (int64, error)
}

// Kind 生成器类型
type Kind string

const (
	// KindDatabase 由数据库自增主键分配，不需要生成器
	KindDatabase  Kind = "database"
	KindSequence  Kind = "sequence"
	KindSnowflake Kind = "snowflake"
)

// New 按类型创建生成器，KindDatabase 返回 nil
func New(kind string, datacenterID, workerID int64) (Generator, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(kind))) {
	case "", KindDatabase:
		return nil, nil
	case KindSequence:
		return NewSequence(1), nil
	case KindSnowflake:
		g, err := NewSnowflake(datacenterID, workerID)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unknown id generator %q", kind)
	}
}

// Sequence 进程内自增序列，并发安全
type Sequence struct {
	next atomic.Int64
}

// NewSequence 创建从 start 开始的序列
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.next.Store(start)
	return s
}

func (s *Sequence) NextID() (int64, error) {
	return s.next.Add(1) - 1, nil
}

// Observe 确保后续生成的 ID 大于 id（用于写入外部指定的 ID 之后）
func (s *Sequence) Observe(id int64) {
	for {
		cur := s.next.Load()
		if id < cur {
			return
		}
		if s.next.CompareAndSwap(cur, id+1) {
			return
		}
	}
}
