// Package basic 基于 database/sql 的最小数据库实现，满足 db.IDatabase 抽象
package basic

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	core "tourneycompanion/data/db"
	"tourneycompanion/data/db/dialect"
)

const defaultBusyTimeout = 5 * time.Second

// DB 基于 *sql.DB 的 IDatabase 实现
type DB struct {
	db      *sql.DB
	dialect dialect.Dialect
}

var (
	_ core.IDatabase            = (*DB)(nil)
	_ core.IDialectNameProvider = (*DB)(nil)
)

// New 根据配置打开数据库并做可用性检查
//
// Driver 为空时使用 sqlite（modernc.org/sqlite，纯 Go 实现）。
// sqlite 下通过 DSN 参数为每个连接设置 busy_timeout 并开启外键约束。
func New(config core.DBConfig) (*DB, error) {
	driver := config.Driver
	if driver == "" {
		driver = "sqlite"
	}
	d := dialect.New(driver)
	if d.DriverName() != "" {
		driver = d.DriverName()
	}

	dsn := config.DSN
	if d.Name() == dialect.NameSQLite {
		dsn = sqliteDSN(dsn, config.BusyTimeout)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	// 连接池配置（可选）
	if config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	// 基础可用性检查
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return &DB{db: sqlDB, dialect: d}, nil
}

// Wrap 包装已打开的 *sql.DB（例如 sqlmock 生成的连接）
func Wrap(sqlDB *sql.DB, driver string) *DB {
	return &DB{db: sqlDB, dialect: dialect.New(driver)}
}

func sqliteDSN(dsn string, busyTimeout time.Duration) string {
	if dsn == "" {
		dsn = ":memory:"
	}
	if busyTimeout <= 0 {
		busyTimeout = defaultBusyTimeout
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", dsn, sep, busyTimeout.Milliseconds())
}

func (d *DB) Query(ctx context.Context, query string, args ...any) (core.IRows, error) {
	rows, err := d.db.QueryContext(ctx, d.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) core.IRow {
	return &Row{row: d.db.QueryRowContext(ctx, d.dialect.Rebind(query), args...)}
}

func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, d.dialect.Rebind(query), args...)
}

func (d *DB) Begin(ctx context.Context) (core.ITransaction, error) {
	return d.BeginTx(ctx, nil)
}

func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (core.ITransaction, error) {
	tx, err := d.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return newTx(d, tx), nil
}

func (d *DB) Ping(ctx context.Context) error { return d.db.PingContext(ctx) }
func (d *DB) Close() error                   { return d.db.Close() }

// SQL 返回底层 *sql.DB
func (d *DB) SQL() *sql.DB { return d.db }

// GetDialectName 实现 core.IDialectNameProvider 接口
func (d *DB) GetDialectName() string {
	return string(d.dialect.Name())
}

// ExecScript 按分号拆分并依次执行 DDL 脚本（用于建表与测试）
func (d *DB) ExecScript(ctx context.Context, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec ddl: %w", err)
		}
	}
	return nil
}
