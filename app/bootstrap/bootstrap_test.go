package bootstrap

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourneycompanion/app/player"
	"tourneycompanion/app/tournament"
	"tourneycompanion/config"
	"tourneycompanion/domain/crud"
	"tourneycompanion/logging"
	"tourneycompanion/messaging"
)

func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Database.DSN = ":memory:"
	if mutate != nil {
		mutate(cfg)
	}
	return cfg
}

func newApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithLogger(logging.NewNoopLogger())}, opts...)
	app, err := New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })
	return app
}

func sampleTournament() *tournament.DTO {
	return &tournament.DTO{
		Name:            "Autumn Cup",
		Game:            "go",
		Format:          tournament.FormatDoubleElimination,
		StartsAt:        time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second),
		EntryFee:        decimal.RequireFromString("5"),
		MaxParticipants: 16,
	}
}

func TestNew_SQLiteDefaults(t *testing.T) {
	app := newApp(t, testConfig(t, nil))
	ctx := context.Background()

	require.NotNil(t, app.Registry)
	assert.Nil(t, app.Events)

	created, err := app.Tournaments.Create(ctx, sampleTournament())
	require.NoError(t, err)
	require.NotNil(t, created.ID)

	got, err := app.Tournaments.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Autumn Cup", got.Name)

	p, err := app.Players.Create(ctx, &player.DTO{Handle: "lee_sedol", Email: "lee@example.com", Rating: 3500})
	require.NoError(t, err)

	// handle 唯一约束在存储层生效，服务统一返回 500
	_, err = app.Players.Create(ctx, &player.DTO{Handle: "lee_sedol", Email: "other@example.com"})
	assert.Equal(t, 500, crud.StatusOf(err))

	require.NoError(t, app.Players.Delete(ctx, p.ID))
	_, err = app.Players.GetByID(ctx, p.ID)
	assert.Equal(t, 404, crud.StatusOf(err))

	count, err := testutil.GatherAndCount(app.Registry, "tourney_crud_operations_total")
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}

func TestNew_MemoryStoreWithDecorators(t *testing.T) {
	reg := prometheus.NewRegistry()
	app := newApp(t, testConfig(t, func(c *config.Config) {
		c.Store.Backend = config.StoreMemory
		c.Cache.Backend = config.CacheMemory
		c.Events.Backend = config.EventsMemory
		c.IDs.Generator = "sequence"
		c.Metrics.Namespace = "league"
	}), WithRegistry(reg))
	ctx := context.Background()

	pub, ok := app.Events.(*messaging.MemoryPublisher)
	require.True(t, ok)
	assert.Same(t, reg, app.Registry)

	created, err := app.Tournaments.Create(ctx, sampleTournament())
	require.NoError(t, err)
	created.Name = "Autumn Cup II"
	_, err = app.Tournaments.Update(ctx, created)
	require.NoError(t, err)
	require.NoError(t, app.Tournaments.Delete(ctx, created.ID))

	events := pub.Events()
	require.Len(t, events, 3)
	assert.Equal(t, messaging.EventCreated, events[0].Type)
	assert.Equal(t, messaging.EventUpdated, events[1].Type)
	assert.Equal(t, messaging.EventDeleted, events[2].Type)
	assert.Equal(t, tournament.Resource, events[0].Resource)

	count, err := testutil.GatherAndCount(reg, "league_crud_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestNew_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	app := newApp(t, testConfig(t, func(c *config.Config) {
		c.Cache.Backend = config.CacheRedis
		c.Metrics.Enabled = false
	}), WithRedisClient(client))
	ctx := context.Background()
	assert.Nil(t, app.Registry)

	created, err := app.Players.Create(ctx, &player.DTO{Handle: "shin_jinseo", Email: "shin@example.com", Rating: 3800})
	require.NoError(t, err)
	assert.True(t, mr.Exists("tourney:player:"+formatID(*created.ID)))

	require.NoError(t, app.Players.Delete(ctx, created.ID))
	assert.False(t, mr.Exists("tourney:player:"+formatID(*created.ID)))
}

func TestNew_InjectedPublisher(t *testing.T) {
	var got []messaging.Event
	pub := messaging.PublisherFunc(func(_ context.Context, evt messaging.Event) error {
		got = append(got, evt)
		return nil
	})
	app := newApp(t, testConfig(t, nil), WithPublisher(pub))

	_, err := app.Players.Create(context.Background(), &player.DTO{Handle: "ke_jie", Email: "ke@example.com"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, player.Resource, got[0].Resource)
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, testConfig(t, func(c *config.Config) { c.Store.Backend = "postgres" }), WithLogger(logging.NewNoopLogger()))
	assert.ErrorContains(t, err, "store.backend")

	_, err = New(ctx, testConfig(t, func(c *config.Config) {
		c.Events.Backend = config.EventsNATS
		c.Events.NATSURL = "nats://127.0.0.1:1"
	}), WithLogger(logging.NewNoopLogger()))
	assert.Error(t, err)

	_, err = New(ctx, testConfig(t, func(c *config.Config) {
		c.Cache.Backend = config.CacheRedis
		c.Cache.Redis.Addr = "127.0.0.1:1"
	}), WithLogger(logging.NewNoopLogger()))
	assert.Error(t, err)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
