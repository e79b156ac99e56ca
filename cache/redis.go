package cache

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"tourneycompanion/domain"
	"tourneycompanion/errors"
)

// RedisStore 基于 Redis 的共享缓存，记录以 JSON 存储，键为 <prefix>:<id>
type RedisStore[E domain.IRecord] struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	stats  counters
}

var _ IStore[*domain.DTO] = (*RedisStore[*domain.DTO])(nil)

// NewRedisStore 创建 Redis 缓存，ttl<=0 表示不过期
func NewRedisStore[E domain.IRecord](client redis.Cmdable, keyPrefix string, ttl time.Duration) *RedisStore[E] {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore[E]{client: client, prefix: keyPrefix, ttl: ttl}
}

// Key 返回记录在 Redis 中的键
func (s *RedisStore[E]) Key(id int64) string {
	if s.prefix == "" {
		return fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("%s:%d", s.prefix, id)
}

func (s *RedisStore[E]) Get(ctx context.Context, id int64) (E, bool, error) {
	var zero E
	data, err := s.client.Get(ctx, s.Key(id)).Bytes()
	if stdErrors.Is(err, redis.Nil) {
		s.stats.record(false)
		return zero, false, nil
	}
	if err != nil {
		return zero, false, errors.WrapError(err, errors.ErrCodeCache, "redis get")
	}

	e := newRecord[E]()
	if e == zero {
		return zero, false, errors.NewError(errors.ErrCodeCache, fmt.Sprintf("cannot decode into %T", zero))
	}
	if err := json.Unmarshal(data, e); err != nil {
		return zero, false, errors.WrapError(err, errors.ErrCodeCache, "decode cached record")
	}
	s.stats.record(true)
	return e, true, nil
}

func (s *RedisStore[E]) Set(ctx context.Context, e E) error {
	var zero E
	if e == zero || e.GetID() == nil {
		return errors.NewError(errors.ErrCodeCache, "cannot cache a record without id")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return errors.WrapError(err, errors.ErrCodeCache, "encode record")
	}
	if err := s.client.Set(ctx, s.Key(*e.GetID()), data, s.ttl).Err(); err != nil {
		return errors.WrapError(err, errors.ErrCodeCache, "redis set")
	}
	return nil
}

func (s *RedisStore[E]) Delete(ctx context.Context, id int64) error {
	if err := s.client.Del(ctx, s.Key(id)).Err(); err != nil {
		return errors.WrapError(err, errors.ErrCodeCache, "redis del")
	}
	return nil
}

// Stats 获取命中统计，Size 恒为 0
func (s *RedisStore[E]) Stats() Stats {
	return Stats{Hits: s.stats.hits.Load(), Misses: s.stats.misses.Load()}
}
