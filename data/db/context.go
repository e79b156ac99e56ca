package db

import "context"

type txKey struct{}

// WithTransaction 将事务绑定到 context，tx 为 nil 时原样返回
func WithTransaction(ctx context.Context, tx ITransaction) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

// TransactionFrom 取出绑定在 context 上的事务
func TransactionFrom(ctx context.Context) (ITransaction, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(txKey{}).(ITransaction)
	return tx, ok && tx != nil
}

// Executor 返回 context 上的事务，没有事务时返回 database 本身
func Executor(ctx context.Context, database IDatabase) IDatabase {
	if tx, ok := TransactionFrom(ctx); ok {
		return tx
	}
	return database
}
