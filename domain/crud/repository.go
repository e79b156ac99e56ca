// Package crud 提供通用 CRUD 服务：在仓储、映射器与校验器之间编排
// 读取、创建、更新与删除，并统一错误与状态码。
package crud

import (
	"context"

	"tourneycompanion/domain"
)

// IRepository 按 ID 寻址的存储契约
//
// FindByID 未找到时返回 found=false 且 err 为 nil，"不存在"不是错误；
// err 只表示存储本身不可用。Save 在首次持久化时分配 ID，返回持久化后的实体。
type IRepository[E domain.IRecord] interface {
	FindByID(ctx context.Context, id int64) (entity E, found bool, err error)
	Save(ctx context.Context, entity E) (E, error)
	Delete(ctx context.Context, entity E) error
}

// IUnitOfWork 工作单元：fn 内的读写要么一起提交，要么一起回滚
type IUnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// UnitOfWorkFunc 函数适配器
type UnitOfWorkFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func (f UnitOfWorkFunc) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// directUnitOfWork 不开启任何边界，直接执行
type directUnitOfWork struct{}

func (directUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
