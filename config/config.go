// Package config 加载 tourneycompanion 的运行配置
//
// 配置来源优先级：环境变量（前缀 TOURNEY_，"." 替换为 "_"）> 配置文件 > 默认值。
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tourneycompanion/data/idgen"
	"tourneycompanion/logging"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "TOURNEY"

const (
	StoreSQLite = "sqlite"
	StoreMemory = "memory"

	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"

	EventsNone   = "none"
	EventsMemory = "memory"
	EventsNATS   = "nats"
)

// Config 顶层配置
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	IDs      IDConfig       `mapstructure:"ids"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Events   EventsConfig   `mapstructure:"events"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Store    StoreConfig    `mapstructure:"store"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver"`
	DSN          string        `mapstructure:"dsn"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	BusyTimeout  time.Duration `mapstructure:"busy_timeout"`
	AutoSchema   bool          `mapstructure:"auto_schema"`
}

// IDConfig ID 生成策略
type IDConfig struct {
	Generator    string `mapstructure:"generator"`
	DatacenterID int64  `mapstructure:"datacenter_id"`
	WorkerID     int64  `mapstructure:"worker_id"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	TTL       time.Duration `mapstructure:"ttl"`
	Size      int           `mapstructure:"size"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Redis     RedisConfig   `mapstructure:"redis"`
}

type EventsConfig struct {
	Backend       string `mapstructure:"backend"`
	NATSURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
	// PublishAttempts 发布失败时的最大尝试次数（仅 nats）
	PublishAttempts int `mapstructure:"publish_attempts"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "tourney.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.busy_timeout", "5s")
	v.SetDefault("database.auto_schema", true)

	v.SetDefault("ids.generator", string(idgen.KindDatabase))
	v.SetDefault("ids.datacenter_id", 0)
	v.SetDefault("ids.worker_id", 0)

	v.SetDefault("cache.backend", CacheNone)
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cache.size", 1024)
	v.SetDefault("cache.key_prefix", "tourney")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("events.backend", EventsNone)
	v.SetDefault("events.nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("events.subject_prefix", "tourney")
	v.SetDefault("events.publish_attempts", 3)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "tourney")

	v.SetDefault("store.backend", StoreSQLite)
}

// Default 返回仅包含默认值的配置
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// 默认值本身不会解码失败
		panic(err)
	}
	return cfg
}

// Load 读取配置，path 为空时只使用默认值与环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		logging.Component("config").Debug(context.Background(), "config file loaded", logging.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验后端取值
func (c *Config) Validate() error {
	if err := oneOf("store.backend", c.Store.Backend, StoreSQLite, StoreMemory); err != nil {
		return err
	}
	if err := oneOf("cache.backend", c.Cache.Backend, CacheNone, CacheMemory, CacheRedis); err != nil {
		return err
	}
	if err := oneOf("events.backend", c.Events.Backend, EventsNone, EventsMemory, EventsNATS); err != nil {
		return err
	}
	if err := oneOf("ids.generator", c.IDs.Generator,
		string(idgen.KindDatabase), string(idgen.KindSequence), string(idgen.KindSnowflake)); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Cache.Backend == CacheMemory && c.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be positive, got %d", c.Cache.Size)
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q, expected one of %s", key, value, strings.Join(allowed, ", "))
}
