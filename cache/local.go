package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"tourneycompanion/domain"
	"tourneycompanion/errors"
)

// LocalStore 进程内缓存，基于 expirable LRU：超过容量驱逐最久未使用的条目，超过 TTL 过期
type LocalStore[E domain.IRecord] struct {
	lru   *expirable.LRU[int64, E]
	stats counters
}

var _ IStore[*domain.DTO] = (*LocalStore[*domain.DTO])(nil)

// NewLocalStore 创建本地缓存，size<=0 表示不限容量，ttl<=0 表示永不过期
func NewLocalStore[E domain.IRecord](size int, ttl time.Duration) *LocalStore[E] {
	if size < 0 {
		size = 0
	}
	if ttl < 0 {
		ttl = 0
	}
	return &LocalStore[E]{lru: expirable.NewLRU[int64, E](size, nil, ttl)}
}

func (s *LocalStore[E]) Get(ctx context.Context, id int64) (E, bool, error) {
	e, ok := s.lru.Get(id)
	s.stats.record(ok)
	return e, ok, nil
}

func (s *LocalStore[E]) Set(ctx context.Context, e E) error {
	var zero E
	if e == zero || e.GetID() == nil {
		return errors.NewError(errors.ErrCodeCache, "cannot cache a record without id")
	}
	s.lru.Add(*e.GetID(), e)
	return nil
}

func (s *LocalStore[E]) Delete(ctx context.Context, id int64) error {
	s.lru.Remove(id)
	return nil
}

// Purge 清空缓存
func (s *LocalStore[E]) Purge() {
	s.lru.Purge()
}

// Stats 获取缓存统计信息
func (s *LocalStore[E]) Stats() Stats {
	return Stats{
		Hits:   s.stats.hits.Load(),
		Misses: s.stats.misses.Load(),
		Size:   s.lru.Len(),
	}
}
