// Package dialect 描述不同数据库在占位符、标识符转义与错误识别上的差异
package dialect

import (
	"strings"

	"github.com/jmoiron/sqlx"

	core "tourneycompanion/data/db"
)

// Name 标准化的数据库方言名称
type Name string

const (
	NameSQLite   Name = "sqlite"
	NamePostgres Name = "postgres"
	NameMySQL    Name = "mysql"
	NameUnknown  Name = ""
)

// Dialect 表示当前数据库的方言能力
type Dialect struct {
	name Name
}

// New 根据字符串构造方言（大小写不敏感）
func New(name string) Dialect {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return Dialect{name: NameSQLite}
	case "postgres", "postgresql", "pgx":
		return Dialect{name: NamePostgres}
	case "mysql":
		return Dialect{name: NameMySQL}
	default:
		return Dialect{name: NameUnknown}
	}
}

// FromDatabase 从 IDatabase 实例推断方言
//
// 需要 IDatabase 可选实现 IDialectNameProvider 接口；否则返回 Unknown。
func FromDatabase(db core.IDatabase) Dialect {
	if db == nil {
		return Dialect{name: NameUnknown}
	}
	if p, ok := db.(core.IDialectNameProvider); ok {
		return New(p.GetDialectName())
	}
	return Dialect{name: NameUnknown}
}

// Name 返回标准化方言名
func (d Dialect) Name() Name {
	return d.name
}

// DriverName 返回 database/sql 注册的驱动名
func (d Dialect) DriverName() string {
	switch d.name {
	case NameSQLite:
		return "sqlite"
	case NamePostgres:
		return "postgres"
	case NameMySQL:
		return "mysql"
	default:
		return ""
	}
}

// BindType 返回 sqlx 的占位符类型
func (d Dialect) BindType() int {
	if d.name == NamePostgres {
		return sqlx.DOLLAR
	}
	return sqlx.QUESTION
}

// Rebind 将通用占位符 ? 转换为方言特定形式（Postgres 为 $1、$2...）
//
// 不解析 SQL，字符串字面量中的 ? 也会被替换。
func (d Dialect) Rebind(query string) string {
	if query == "" {
		return query
	}
	return sqlx.Rebind(d.BindType(), query)
}

// QuoteIdentifier 根据方言对标识符进行转义（如表名/列名）。
//
// 支持 table.column 等带点形式，会对每一段分别加引号；未知方言原样返回。
func (d Dialect) QuoteIdentifier(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		if p == "" {
			continue
		}
		switch d.name {
		case NameMySQL:
			parts[i] = "`" + p + "`"
		case NameSQLite, NamePostgres:
			parts[i] = `"` + p + `"`
		}
	}
	return strings.Join(parts, ".")
}

// IsUniqueViolation 判断错误是否为唯一键/主键冲突
//
// 基于错误消息关键字匹配：
//   - SQLite: "UNIQUE constraint failed"
//   - Postgres: "duplicate key value", "unique constraint" (23505)
//   - MySQL: "Duplicate entry" (1062)
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	switch d.name {
	case NameSQLite:
		return strings.Contains(msg, "unique constraint failed")
	case NamePostgres:
		return strings.Contains(msg, "duplicate key") ||
			strings.Contains(msg, "unique constraint")
	case NameMySQL:
		return strings.Contains(msg, "duplicate entry") ||
			strings.Contains(msg, "duplicate key")
	default:
		return strings.Contains(msg, "duplicate key") ||
			strings.Contains(msg, "unique constraint")
	}
}
