package messaging

import (
	"context"

	"tourneycompanion/domain"
	"tourneycompanion/domain/crud"
	"tourneycompanion/logging"
)

// Repository 在写入成功后发布生命周期事件的仓储装饰器
//
// Save 前记录不存在（ID 为 nil，或按 ID 查不到而被仓储插入）时发布 created，
// 否则发布 updated；Delete 成功后发布 deleted。
// 发布失败记 Warn 日志，不影响写入结果。
type Repository[E domain.IRecord] struct {
	inner     crud.IRepository[E]
	publisher IPublisher
	resource  string
	logger    logging.Logger
}

var _ crud.IRepository[*domain.DTO] = (*Repository[*domain.DTO])(nil)

// NewRepository 创建事件仓储
func NewRepository[E domain.IRecord](inner crud.IRepository[E], publisher IPublisher, resource string) *Repository[E] {
	return &Repository[E]{
		inner:     inner,
		publisher: publisher,
		resource:  resource,
		logger:    logging.Component("events"),
	}
}

func (r *Repository[E]) FindByID(ctx context.Context, id int64) (E, bool, error) {
	return r.inner.FindByID(ctx, id)
}

func (r *Repository[E]) Save(ctx context.Context, e E) (E, error) {
	var zero E
	eventType := r.classify(ctx, e)

	persisted, err := r.inner.Save(ctx, e)
	if err != nil || persisted == zero || persisted.GetID() == nil {
		return persisted, err
	}
	r.publish(ctx, eventType, *persisted.GetID(), persisted)
	return persisted, nil
}

// classify 保存前判断本次写入是插入还是更新，查询失败时按更新处理
func (r *Repository[E]) classify(ctx context.Context, e E) EventType {
	var zero E
	if e == zero || e.GetID() == nil {
		return EventCreated
	}
	_, found, err := r.inner.FindByID(ctx, *e.GetID())
	if err != nil {
		r.logger.Warn(ctx, "event type lookup failed",
			logging.String("resource", r.resource), logging.Int64("id", *e.GetID()), logging.Error(err))
		return EventUpdated
	}
	if !found {
		return EventCreated
	}
	return EventUpdated
}

func (r *Repository[E]) Delete(ctx context.Context, e E) error {
	if err := r.inner.Delete(ctx, e); err != nil {
		return err
	}
	if id := e.GetID(); id != nil {
		r.publish(ctx, EventDeleted, *id, nil)
	}
	return nil
}

func (r *Repository[E]) publish(ctx context.Context, eventType EventType, id int64, payload any) {
	fields := []logging.Field{
		logging.String("resource", r.resource),
		logging.String("type", string(eventType)),
		logging.Int64("id", id),
	}
	evt, err := NewEvent(r.resource, eventType, id, payload)
	if err != nil {
		r.logger.Warn(ctx, "event encode failed", append(fields, logging.Error(err))...)
		return
	}
	if err := r.publisher.Publish(ctx, evt); err != nil {
		r.logger.Warn(ctx, "event publish failed", append(fields, logging.Error(err))...)
	}
}
