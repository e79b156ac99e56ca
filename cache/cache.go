// Package cache 提供仓储读缓存
//
// 设计原则：
// 1. 缓存是加速层 - 缓存故障只记日志，不影响读写结果
// 2. 类型安全 - 使用泛型按记录类型存取
// 3. 容量管理 - 本地缓存 LRU 驱逐加 TTL 过期
package cache

import (
	"context"
	"reflect"
	"sync/atomic"

	"tourneycompanion/domain"
)

// IStore 按记录 ID 存取的缓存
type IStore[E domain.IRecord] interface {
	// Get 未命中时 found=false，err 只表示缓存本身故障
	Get(ctx context.Context, id int64) (entity E, found bool, err error)
	Set(ctx context.Context, entity E) error
	Delete(ctx context.Context, id int64) error
}

// Stats 缓存统计信息
type Stats struct {
	Hits   int64
	Misses int64
	Size   int
}

// HitRate 命中率
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (c *counters) record(found bool) {
	if found {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
}

// newRecord 为指针类型 E 分配一个新的零值结构体
func newRecord[E domain.IRecord]() E {
	var zero E
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Pointer {
		return zero
	}
	return reflect.New(t.Elem()).Interface().(E)
}
