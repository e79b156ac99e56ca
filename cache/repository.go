package cache

import (
	"context"

	"tourneycompanion/domain"
	"tourneycompanion/domain/crud"
	"tourneycompanion/logging"
)

// Repository 带缓存的仓储装饰器
//
// FindByID 读穿透，Save 写穿透，Delete 成功后驱逐。
// 缓存故障记 Warn 日志后继续，不改变仓储的返回结果。
type Repository[E domain.IRecord] struct {
	inner  crud.IRepository[E]
	store  IStore[E]
	logger logging.Logger
}

var _ crud.IRepository[*domain.DTO] = (*Repository[*domain.DTO])(nil)

// NewRepository 创建缓存仓储
func NewRepository[E domain.IRecord](inner crud.IRepository[E], store IStore[E]) *Repository[E] {
	return &Repository[E]{
		inner:  inner,
		store:  store,
		logger: logging.Component("cache"),
	}
}

func (r *Repository[E]) FindByID(ctx context.Context, id int64) (E, bool, error) {
	cached, found, err := r.store.Get(ctx, id)
	if err != nil {
		r.logger.Warn(ctx, "cache get failed", logging.Int64("id", id), logging.Error(err))
	} else if found {
		return cached, true, nil
	}

	e, found, err := r.inner.FindByID(ctx, id)
	if err != nil || !found {
		return e, found, err
	}
	if err := r.store.Set(ctx, e); err != nil {
		r.logger.Warn(ctx, "cache fill failed", logging.Int64("id", id), logging.Error(err))
	}
	return e, true, nil
}

func (r *Repository[E]) Save(ctx context.Context, e E) (E, error) {
	persisted, err := r.inner.Save(ctx, e)
	if err != nil {
		return persisted, err
	}
	var zero E
	if persisted == zero || persisted.GetID() == nil {
		return persisted, nil
	}
	if err := r.store.Set(ctx, persisted); err != nil {
		r.logger.Warn(ctx, "cache write failed", logging.Int64("id", *persisted.GetID()), logging.Error(err))
		r.evict(ctx, *persisted.GetID())
	}
	return persisted, nil
}

func (r *Repository[E]) Delete(ctx context.Context, e E) error {
	if err := r.inner.Delete(ctx, e); err != nil {
		return err
	}
	if id := e.GetID(); id != nil {
		r.evict(ctx, *id)
	}
	return nil
}

func (r *Repository[E]) evict(ctx context.Context, id int64) {
	if err := r.store.Delete(ctx, id); err != nil {
		r.logger.Warn(ctx, "cache evict failed", logging.Int64("id", id), logging.Error(err))
	}
}
