package dialect

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.Equal(t, NameSQLite, New("SQLite3").Name())
	assert.Equal(t, NamePostgres, New(" postgresql ").Name())
	assert.Equal(t, NameMySQL, New("mysql").Name())
	assert.Equal(t, NameUnknown, New("oracle").Name())
	assert.Equal(t, NameUnknown, FromDatabase(nil).Name())
}

func TestRebind_Postgres(t *testing.T) {
	d := New("postgres")
	q := "SELECT * FROM t WHERE a = ? AND b IN (?, ?)"
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b IN ($2, $3)", d.Rebind(q))
}

func TestRebind_NoChangeForSQLite(t *testing.T) {
	orig := "DELETE FROM t WHERE id = ? AND name = ?"
	for _, name := range []string{"sqlite", "mysql", "unknown"} {
		assert.Equal(t, orig, New(name).Rebind(orig), name)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	tests := []struct {
		dialect string
		in      string
		want    string
	}{
		{"sqlite", "tournaments", `"tournaments"`},
		{"postgres", "public.players", `"public"."players"`},
		{"mysql", "players.id", "`players`.`id`"},
		{"unknown", "players", "players"},
		{"sqlite", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.dialect).QuoteIdentifier(tt.in))
	}
}

func TestIsUniqueViolation(t *testing.T) {
	sqlite := New("sqlite")
	assert.True(t, sqlite.IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: players.handle (2067)")))
	assert.False(t, sqlite.IsUniqueViolation(errors.New("no such table: players")))
	assert.False(t, sqlite.IsUniqueViolation(nil))

	pg := New("postgres")
	assert.True(t, pg.IsUniqueViolation(errors.New(`pq: duplicate key value violates unique constraint "players_handle_key"`)))

	assert.True(t, New("mysql").IsUniqueViolation(errors.New("Error 1062: Duplicate entry 'x' for key 'handle'")))
	assert.Equal(t, "sqlite", sqlite.DriverName())
}
