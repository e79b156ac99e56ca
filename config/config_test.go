package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tourney.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "tourney.db", cfg.Database.DSN)
	assert.Equal(t, 1, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.Database.BusyTimeout)
	assert.True(t, cfg.Database.AutoSchema)
	assert.Equal(t, "database", cfg.IDs.Generator)
	assert.Equal(t, CacheNone, cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 1024, cfg.Cache.Size)
	assert.Equal(t, EventsNone, cfg.Events.Backend)
	assert.Equal(t, "tourney", cfg.Events.SubjectPrefix)
	assert.Equal(t, 3, cfg.Events.PublishAttempts)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "tourney", cfg.Metrics.Namespace)
	assert.Equal(t, StoreSQLite, cfg.Store.Backend)

	assert.Equal(t, cfg, Default())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
database:
  dsn: ":memory:"
ids:
  generator: snowflake
  worker_id: 3
cache:
  backend: redis
  ttl: 30s
  redis:
    addr: cache:6379
    db: 2
events:
  backend: nats
  nats_url: nats://broker:4222
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":memory:", cfg.Database.DSN)
	assert.Equal(t, "snowflake", cfg.IDs.Generator)
	assert.Equal(t, int64(3), cfg.IDs.WorkerID)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "cache:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, EventsNATS, cfg.Events.Backend)
	assert.Equal(t, "nats://broker:4222", cfg.Events.NATSURL)
	// 未出现在文件中的键保持默认值
	assert.Equal(t, "tourney", cfg.Cache.KeyPrefix)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "store:\n  backend: sqlite\n")
	t.Setenv("TOURNEY_STORE_BACKEND", "memory")
	t.Setenv("TOURNEY_METRICS_NAMESPACE", "league")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "league", cfg.Metrics.Namespace)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "store:\n  backend: postgres\n"))
	assert.ErrorContains(t, err, "store.backend")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "默认配置", mutate: func(*Config) {}},
		{name: "未知缓存", mutate: func(c *Config) { c.Cache.Backend = "memcached" }, wantErr: "cache.backend"},
		{name: "未知事件", mutate: func(c *Config) { c.Events.Backend = "kafka" }, wantErr: "events.backend"},
		{name: "未知ID生成器", mutate: func(c *Config) { c.IDs.Generator = "uuid" }, wantErr: "ids.generator"},
		{name: "未知日志级别", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "loud"},
		{name: "内存缓存容量", mutate: func(c *Config) { c.Cache.Backend = CacheMemory; c.Cache.Size = 0 }, wantErr: "cache.size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
