// Package repository 提供基于 SQL 的通用仓储实现，满足 crud.IRepository
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"

	core "tourneycompanion/data/db"
	"tourneycompanion/data/db/dialect"
	"tourneycompanion/data/idgen"
	"tourneycompanion/domain"
	"tourneycompanion/domain/crud"
	"tourneycompanion/domain/entity"
	"tourneycompanion/errors"
)

const (
	columnID           = "id"
	columnCreatedAt    = "created_timestamp"
	columnLastModified = "last_modified_timestamp"
)

// Table 表描述：表名与数据列
//
// id、created_timestamp、last_modified_timestamp 由仓储自行处理，不需要列出。
// 列名与实体字段通过 db 标签对应。
type Table struct {
	Name    string
	Columns []string
}

// Option 仓储选项
type Option func(*options)

type options struct {
	clock func() time.Time
	ids   idgen.Generator
}

// WithClock 设置时间函数（用于测试）
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithIDGenerator 由生成器分配 ID，而不是依赖数据库自增主键
func WithIDGenerator(ids idgen.Generator) Option {
	return func(o *options) {
		o.ids = ids
	}
}

// SQLRepository 基于 SQL 的通用仓储
//
// E 必须是结构体指针，字段通过 db 标签与列对应（sqlx 规则）。
// ctx 上绑定了事务时，所有语句都在该事务内执行。
type SQLRepository[E domain.IRecord] struct {
	db      core.IDatabase
	table   Table
	dialect dialect.Dialect
	mapper  *reflectx.Mapper
	opts    options

	selectSQL   string
	insertSQL   string
	insertIDSQL string
	updateSQL   string
	deleteSQL   string
}

var _ crud.IRepository[*entity.Entity] = (*SQLRepository[*entity.Entity])(nil)

// NewSQLRepository 创建 SQL 仓储
func NewSQLRepository[E domain.IRecord](database core.IDatabase, table Table, opts ...Option) *SQLRepository[E] {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	r := &SQLRepository[E]{
		db:      database,
		table:   table,
		dialect: dialect.FromDatabase(database),
		mapper:  reflectx.NewMapperFunc("db", strings.ToLower),
		opts:    o,
	}
	r.buildStatements()
	return r
}

func (r *SQLRepository[E]) buildStatements() {
	q := r.dialect.QuoteIdentifier
	tableName := q(r.table.Name)

	all := make([]string, 0, len(r.table.Columns)+3)
	all = append(all, q(columnID))
	for _, c := range r.table.Columns {
		all = append(all, q(c))
	}
	all = append(all, q(columnCreatedAt), q(columnLastModified))

	writable := append(append([]string{}, r.table.Columns...), columnCreatedAt, columnLastModified)
	quoted := make([]string, len(writable))
	for i, c := range writable {
		quoted[i] = q(c)
	}

	sets := make([]string, 0, len(r.table.Columns)+1)
	for _, c := range r.table.Columns {
		sets = append(sets, q(c)+" = ?")
	}
	sets = append(sets, q(columnLastModified)+" = ?")

	r.selectSQL = fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", strings.Join(all, ", "), tableName, q(columnID))
	r.insertSQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		tableName, strings.Join(quoted, ", "), placeholders(len(quoted)))
	r.insertIDSQL = fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (%s)",
		tableName, q(columnID), strings.Join(quoted, ", "), placeholders(len(quoted)+1))
	r.updateSQL = fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", tableName, strings.Join(sets, ", "), q(columnID))
	r.deleteSQL = fmt.Sprintf("DELETE FROM %s WHERE %s = ?", tableName, q(columnID))
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// FindByID 根据ID获取，不存在时 found=false
func (r *SQLRepository[E]) FindByID(ctx context.Context, id int64) (E, bool, error) {
	var zero E
	found, ok, err := r.find(ctx, core.Executor(ctx, r.db), id)
	if err != nil {
		return zero, false, errors.WrapDatabaseError(ctx, err, "find "+r.table.Name, r.dialect.IsUniqueViolation)
	}
	return found, ok, nil
}

func (r *SQLRepository[E]) find(ctx context.Context, exec core.IDatabase, id int64) (E, bool, error) {
	var zero E
	rows, err := exec.Query(ctx, r.selectSQL, id)
	if err != nil {
		return zero, false, err
	}
	defer rows.Close()

	var out []E
	if err := sqlx.StructScan(rows, &out); err != nil {
		return zero, false, err
	}
	if len(out) == 0 {
		return zero, false, nil
	}
	return out[0], true, nil
}

// Save 保存实体：ID 为 nil 时插入，否则更新；更新未命中任何行时按该 ID 插入。
// 返回重新读取的持久化结果。
func (r *SQLRepository[E]) Save(ctx context.Context, e E) (E, error) {
	var zero E
	if e == zero {
		return zero, errors.NewError(errors.ErrCodeInvalidInput, "cannot save nil entity")
	}
	if ts, ok := any(e).(entity.ITimestamped); ok {
		ts.Touch(r.opts.clock())
	}

	exec := core.Executor(ctx, r.db)
	id, err := r.write(ctx, exec, e)
	if err != nil {
		return zero, errors.WrapDatabaseError(ctx, err, "save "+r.table.Name, r.dialect.IsUniqueViolation)
	}

	persisted, found, err := r.find(ctx, exec, id)
	if err != nil {
		return zero, errors.WrapDatabaseError(ctx, err, "reload "+r.table.Name, r.dialect.IsUniqueViolation)
	}
	if !found {
		return zero, errors.NewError(errors.ErrCodeDatabase,
			fmt.Sprintf("%s with id %d vanished after save", r.table.Name, id))
	}
	return persisted, nil
}

func (r *SQLRepository[E]) write(ctx context.Context, exec core.IDatabase, e E) (int64, error) {
	values, err := r.values(e)
	if err != nil {
		return 0, err
	}

	if id := e.GetID(); id != nil {
		res, err := exec.Exec(ctx, r.updateSQL, r.updateArgs(values, *id)...)
		if err != nil {
			return 0, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if affected > 0 {
			return *id, nil
		}
		return *id, r.insertWithID(ctx, exec, *id, values)
	}

	if r.opts.ids != nil {
		next, err := r.opts.ids.NextID()
		if err != nil {
			return 0, err
		}
		if err := r.insertWithID(ctx, exec, next, values); err != nil {
			return 0, err
		}
		e.SetID(domain.ID(next))
		return next, nil
	}

	res, err := exec.Exec(ctx, r.insertSQL, values...)
	if err != nil {
		return 0, err
	}
	next, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	e.SetID(domain.ID(next))
	return next, nil
}

func (r *SQLRepository[E]) insertWithID(ctx context.Context, exec core.IDatabase, id int64, values []any) error {
	args := make([]any, 0, len(values)+1)
	args = append(args, id)
	args = append(args, values...)
	_, err := exec.Exec(ctx, r.insertIDSQL, args...)
	return err
}

// updateArgs 数据列、最后修改时间、ID；创建时间不参与更新
func (r *SQLRepository[E]) updateArgs(values []any, id int64) []any {
	n := len(r.table.Columns)
	args := make([]any, 0, n+2)
	args = append(args, values[:n]...)
	args = append(args, values[n+1], id)
	return args
}

// values 按 数据列、created_timestamp、last_modified_timestamp 的顺序取出字段值
func (r *SQLRepository[E]) values(e E) ([]any, error) {
	v := reflect.Indirect(reflect.ValueOf(e))
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("entity %T is not a struct pointer", e)
	}
	cols := append(append([]string{}, r.table.Columns...), columnCreatedAt, columnLastModified)
	out := make([]any, len(cols))
	for i, col := range cols {
		f := r.mapper.FieldByName(v, col)
		if !f.IsValid() {
			return nil, fmt.Errorf("entity %T has no field tagged db:%q", e, col)
		}
		out[i] = f.Interface()
	}
	return out, nil
}

// Delete 物理删除
func (r *SQLRepository[E]) Delete(ctx context.Context, e E) error {
	var zero E
	if e == zero || e.GetID() == nil {
		return errors.NewError(errors.ErrCodeNotFound, "cannot delete an entity without id")
	}
	res, err := core.Executor(ctx, r.db).Exec(ctx, r.deleteSQL, *e.GetID())
	if err != nil {
		return errors.WrapDatabaseError(ctx, err, "delete "+r.table.Name, r.dialect.IsUniqueViolation)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return errors.WrapError(sql.ErrNoRows, errors.ErrCodeNotFound,
			fmt.Sprintf("%s with id %d not found", r.table.Name, *e.GetID()))
	}
	return nil
}
