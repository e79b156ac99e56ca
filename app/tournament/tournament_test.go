package tournament

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	core "tourneycompanion/data/db"
	"tourneycompanion/data/db/basic"
	"tourneycompanion/data/repository"
	"tourneycompanion/domain"
	"tourneycompanion/domain/crud"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func validDTO() *DTO {
	return &DTO{
		Name:            "Spring Open",
		Game:            "chess",
		Format:          FormatSwiss,
		StartsAt:        now.Add(48 * time.Hour),
		EntryFee:        decimal.RequireFromString("12.50"),
		MaxParticipants: 64,
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator(func() time.Time { return now })

	tests := []struct {
		name   string
		mutate func(*DTO)
		op     crud.Operation
		want   []string
	}{
		{name: "有效", mutate: func(*DTO) {}, op: crud.OperationCreate, want: []string{}},
		{name: "缺少名称", mutate: func(d *DTO) { d.Name = "" }, op: crud.OperationCreate, want: []string{"name is required."}},
		{name: "未知赛制", mutate: func(d *DTO) { d.Format = "ladder" }, op: crud.OperationCreate,
			want: []string{"format must be one of [single_elimination double_elimination round_robin swiss]."}},
		{name: "人数过少", mutate: func(d *DTO) { d.MaxParticipants = 1 }, op: crud.OperationCreate,
			want: []string{"max_participants must be greater than or equal to 2."}},
		{name: "人数过多", mutate: func(d *DTO) { d.MaxParticipants = 2048 }, op: crud.OperationCreate,
			want: []string{"max_participants must be less than or equal to 1024."}},
		{name: "负报名费", mutate: func(d *DTO) { d.EntryFee = decimal.NewFromInt(-1) }, op: crud.OperationCreate,
			want: []string{"entry_fee must not be negative."}},
		{name: "缺少开赛时间", mutate: func(d *DTO) { d.StartsAt = time.Time{} }, op: crud.OperationCreate,
			want: []string{"starts_at is required."}},
		{name: "创建时开赛时间已过", mutate: func(d *DTO) { d.StartsAt = now.Add(-time.Hour) }, op: crud.OperationCreate,
			want: []string{"starts_at must not be in the past."}},
		{name: "更新时允许过去的开赛时间", mutate: func(d *DTO) { d.ID = domain.ID(1); d.StartsAt = now.Add(-time.Hour) },
			op: crud.OperationUpdate, want: []string{}},
		{name: "更新缺少ID", mutate: func(*DTO) {}, op: crud.OperationUpdate, want: []string{"ID is required for update."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dto := validDTO()
			tt.mutate(dto)
			assert.Equal(t, tt.want, v.Validate(dto, tt.op))
		})
	}

	assert.Equal(t, []string{"No DTO Provided."}, v.Validate(nil, crud.OperationCreate))
}

func TestMapper(t *testing.T) {
	dto := validDTO()
	dto.ID = domain.ID(5)

	e := Mapper.ToEntity(dto)
	assert.Equal(t, int64(5), *e.ID)
	assert.NotSame(t, dto.ID, e.ID)
	assert.True(t, e.EntryFee.Equal(dto.EntryFee))

	back := Mapper.FromEntity(e)
	assert.Equal(t, dto, back)
}

func TestService_SQLite(t *testing.T) {
	database, err := basic.New(core.DBConfig{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	ctx := context.Background()
	require.NoError(t, database.ExecScript(ctx, Schema))

	repo := repository.NewSQLRepository[*Entity](database, Table)
	svc := NewService(repo, crud.WithUnitOfWork(basic.NewUnitOfWork(database)))

	in := validDTO()
	in.StartsAt = time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, created.ID)
	assert.Equal(t, "12.5", created.EntryFee.String())
	assert.True(t, created.StartsAt.Equal(in.StartsAt))

	created.EntryFee = decimal.RequireFromString("0.10")
	created.Format = FormatRoundRobin
	updated, err := svc.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, FormatRoundRobin, updated.Format)
	assert.True(t, updated.EntryFee.Equal(decimal.RequireFromString("0.1")))

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spring Open", got.Name)

	_, err = svc.Create(ctx, &DTO{})
	assert.Equal(t, 400, crud.StatusOf(err))

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.Equal(t, 404, crud.StatusOf(err))
}
