package basic

import (
	"context"

	core "tourneycompanion/data/db"
	"tourneycompanion/domain/crud"
	"tourneycompanion/errors"
	"tourneycompanion/logging"
)

// UnitOfWork 基于数据库事务的工作单元
//
// Do 开启事务并绑定到 ctx，fn 返回 nil 时提交，返回错误或 panic 时回滚。
// ctx 上已有事务时直接加入，不再开启新事务。
type UnitOfWork struct {
	db     core.IDatabase
	logger logging.Logger
}

var _ crud.IUnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork 创建工作单元
func NewUnitOfWork(db core.IDatabase) *UnitOfWork {
	return &UnitOfWork{db: db, logger: logging.Component("uow")}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := core.TransactionFrom(ctx); ok {
		return fn(ctx)
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(ctx, err, errors.ErrCodeDatabase, "begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(core.WithTransaction(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			u.logger.Warn(ctx, "rollback failed", logging.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(ctx, err, errors.ErrCodeDatabase, "commit transaction")
	}
	return nil
}
