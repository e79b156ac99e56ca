// Package memory 提供基于内存 map 的仓储实现，用于测试与无数据库运行
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tourneycompanion/data/idgen"
	"tourneycompanion/domain"
	"tourneycompanion/domain/crud"
	"tourneycompanion/domain/entity"
	"tourneycompanion/errors"
)

// Option 仓储选项
type Option func(*options)

type options struct {
	ids   idgen.Generator
	clock func() time.Time
}

// WithIDGenerator 设置 ID 生成器，默认从 1 开始自增
func WithIDGenerator(ids idgen.Generator) Option {
	return func(o *options) {
		if ids != nil {
			o.ids = ids
		}
	}
}

// WithClock 设置时间函数（用于测试）
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// Repository 内存仓储，并发安全
//
// 保存的是调用方传入的指针本身；ID 为 nil 时分配新 ID，
// 已有 ID 但不存在时按该 ID 插入。
type Repository[E domain.IRecord] struct {
	mu       sync.RWMutex
	entities map[int64]E
	opts     options
}

var _ crud.IRepository[*entity.Entity] = (*Repository[*entity.Entity])(nil)

// NewRepository 创建内存仓储
func NewRepository[E domain.IRecord](opts ...Option) *Repository[E] {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = idgen.NewSequence(1)
	}
	return &Repository[E]{
		entities: make(map[int64]E),
		opts:     o,
	}
}

func (r *Repository[E]) FindByID(ctx context.Context, id int64) (E, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entities[id]
	return e, ok, nil
}

func (r *Repository[E]) Save(ctx context.Context, e E) (E, error) {
	var zero E
	if e == zero {
		return zero, errors.NewError(errors.ErrCodeInvalidInput, "cannot save nil entity")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := e.GetID()
	if id == nil {
		next, err := r.nextFreeID()
		if err != nil {
			return zero, errors.WrapError(err, errors.ErrCodeInternal, "failed to allocate id")
		}
		id = domain.ID(next)
		e.SetID(id)
	} else if seq, ok := r.opts.ids.(*idgen.Sequence); ok {
		seq.Observe(*id)
	}

	if ts, ok := any(e).(entity.ITimestamped); ok {
		// 更新时保留已存储的创建时间
		if prev, exists := r.entities[*id]; exists {
			if prevTs, ok := any(prev).(entity.ITimestamped); ok {
				ts.Timestamps().CreatedAt = prevTs.Timestamps().CreatedAt
			}
		}
		ts.Touch(r.opts.clock())
	}

	r.entities[*id] = e
	return e, nil
}

func (r *Repository[E]) nextFreeID() (int64, error) {
	for i := 0; i < 1000; i++ {
		next, err := r.opts.ids.NextID()
		if err != nil {
			return 0, err
		}
		if _, taken := r.entities[next]; !taken {
			return next, nil
		}
	}
	return 0, fmt.Errorf("no free id after 1000 attempts")
}

func (r *Repository[E]) Delete(ctx context.Context, e E) error {
	var zero E
	if e == zero || e.GetID() == nil {
		return errors.NewError(errors.ErrCodeNotFound, "cannot delete an entity without id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := *e.GetID()
	if _, ok := r.entities[id]; !ok {
		return errors.NewError(errors.ErrCodeNotFound, fmt.Sprintf("entity with id %d not found", id))
	}
	delete(r.entities, id)
	return nil
}

// Len 当前记录数
func (r *Repository[E]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entities)
}
