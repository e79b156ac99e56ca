package basic

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"sync/atomic"

	core "tourneycompanion/data/db"
	"tourneycompanion/data/db/dialect"
	"tourneycompanion/errors"
)

// ErrNestedTransaction 在事务内再次 Begin
var ErrNestedTransaction = errors.NewError(errors.ErrCodeDatabase, "nested transactions are not supported")

// Tx 绑定在 ctx 上的事务（core.WithTransaction）
//
// Tx 同时满足 core.IDatabase，仓储通过 core.Executor(ctx, db) 拿到它后
// 与普通连接一样执行语句。生命周期由 UnitOfWork 管理：
// 嵌套的 UnitOfWork.Do 复用已绑定的 Tx，不会走到 Begin。
type Tx struct {
	owner   *DB
	tx      *sql.Tx
	dialect dialect.Dialect
	done    atomic.Bool
}

func newTx(owner *DB, tx *sql.Tx) *Tx {
	return &Tx{owner: owner, tx: tx, dialect: owner.dialect}
}

func (t *Tx) Query(ctx context.Context, query string, args ...any) (core.IRows, error) {
	rows, err := t.tx.QueryContext(ctx, t.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) core.IRow {
	return &Row{row: t.tx.QueryRowContext(ctx, t.dialect.Rebind(query), args...)}
}

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

// Begin 总是返回 ErrNestedTransaction
func (t *Tx) Begin(context.Context) (core.ITransaction, error) {
	return nil, ErrNestedTransaction
}

func (t *Tx) Ping(ctx context.Context) error { return t.owner.Ping(ctx) }

// Close 不关闭底层连接池，连接池属于 DB
func (t *Tx) Close() error { return nil }

func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return err
	}
	t.done.Store(true)
	return nil
}

// Rollback 在事务已提交或已回滚后调用时返回 nil，可放心 defer
func (t *Tx) Rollback() error {
	if t.done.Load() {
		return nil
	}
	err := t.tx.Rollback()
	if err == nil || stdErrors.Is(err, sql.ErrTxDone) {
		t.done.Store(true)
		return nil
	}
	return err
}

// Done 事务是否已结束
func (t *Tx) Done() bool { return t.done.Load() }

func (t *Tx) GetDialectName() string {
	return string(t.dialect.Name())
}
