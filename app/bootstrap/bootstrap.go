// Package bootstrap 按配置组装存储、装饰器与服务
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"tourneycompanion/app/player"
	"tourneycompanion/app/tournament"
	"tourneycompanion/cache"
	"tourneycompanion/config"
	core "tourneycompanion/data/db"
	"tourneycompanion/data/db/basic"
	"tourneycompanion/data/idgen"
	"tourneycompanion/data/memory"
	"tourneycompanion/data/repository"
	"tourneycompanion/domain"
	"tourneycompanion/domain/crud"
	"tourneycompanion/logging"
	"tourneycompanion/messaging"
	"tourneycompanion/metrics"
)

// Option 组装选项，主要用于测试注入外部依赖
type Option func(*options)

type options struct {
	registry  *prometheus.Registry
	redis     redis.Cmdable
	publisher messaging.IPublisher
	logger    logging.Logger
}

// WithRegistry 指标注册到指定 Registry
func WithRegistry(registry *prometheus.Registry) Option {
	return func(o *options) { o.registry = registry }
}

// WithRedisClient 使用已有的 Redis 客户端（cache.backend=redis 时生效）
func WithRedisClient(client redis.Cmdable) Option {
	return func(o *options) { o.redis = client }
}

// WithPublisher 使用指定的事件发布者，忽略 events.backend
func WithPublisher(publisher messaging.IPublisher) Option {
	return func(o *options) { o.publisher = publisher }
}

// WithLogger 使用指定日志记录器，不再根据 log 配置创建 zap 日志
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// App 组装完成的应用
type App struct {
	Config      *config.Config
	Tournaments crud.IService[*tournament.DTO]
	Players     crud.IService[*player.DTO]
	// Registry metrics.enabled=false 时为 nil
	Registry *prometheus.Registry
	// Events events.backend=none 且未注入发布者时为 nil
	Events messaging.IPublisher

	closers []func() error
}

// stores 每个资源的仓储
type stores struct {
	tournaments crud.IRepository[*tournament.Entity]
	players     crud.IRepository[*player.Entity]
	uow         crud.IUnitOfWork
}

// New 根据配置组装应用，失败时释放已创建的资源
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	app := &App{Config: cfg}
	built := false
	defer func() {
		if !built {
			_ = app.Close()
		}
	}()

	logger, err := app.setupLogger(o)
	if err != nil {
		return nil, err
	}

	ids, err := idgen.New(cfg.IDs.Generator, cfg.IDs.DatacenterID, cfg.IDs.WorkerID)
	if err != nil {
		return nil, fmt.Errorf("id generator: %w", err)
	}

	if err := app.setupEvents(o); err != nil {
		return nil, err
	}
	redisClient, err := app.setupRedis(ctx, o)
	if err != nil {
		return nil, err
	}

	st, err := app.setupStores(ctx, ids)
	if err != nil {
		return nil, err
	}

	var svcOpts []crud.Option
	if st.uow != nil {
		svcOpts = append(svcOpts, crud.WithUnitOfWork(st.uow))
	}

	tournaments := decorate(st.tournaments, tournament.Resource, cfg.Cache, redisClient, app.Events)
	players := decorate(st.players, player.Resource, cfg.Cache, redisClient, app.Events)
	app.Tournaments = tournament.NewService(tournaments, svcOpts...)
	app.Players = player.NewService(players, svcOpts...)

	if cfg.Metrics.Enabled {
		app.Registry = o.registry
		if app.Registry == nil {
			app.Registry = prometheus.NewRegistry()
		}
		collectors, err := metrics.NewCollectors(app.Registry, cfg.Metrics.Namespace)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		app.Tournaments = metrics.Wrap(app.Tournaments, collectors, tournament.Resource)
		app.Players = metrics.Wrap(app.Players, collectors, player.Resource)
	}

	logger.Info(ctx, "application assembled",
		logging.String("store", cfg.Store.Backend),
		logging.String("cache", cfg.Cache.Backend),
		logging.String("events", cfg.Events.Backend),
		logging.String("ids", cfg.IDs.Generator),
		logging.Bool("metrics", cfg.Metrics.Enabled))

	built = true
	return app, nil
}

func (a *App) setupLogger(o options) (logging.Logger, error) {
	if o.logger != nil {
		logging.SetLogger(o.logger)
		return logging.Component("bootstrap"), nil
	}
	zl, err := logging.NewZapLogger(logging.Options{
		Level:       a.Config.Log.Level,
		Development: a.Config.Log.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logging.SetLogger(zl)
	a.onClose(func() error {
		// stderr 上的 Sync 常返回 EINVAL，忽略
		_ = zl.Sync()
		return nil
	})
	return logging.Component("bootstrap"), nil
}

func (a *App) setupEvents(o options) error {
	if o.publisher != nil {
		a.Events = o.publisher
		return nil
	}
	switch a.Config.Events.Backend {
	case config.EventsMemory:
		a.Events = messaging.NewMemoryPublisher()
	case config.EventsNATS:
		pub, err := messaging.ConnectNATS(messaging.NATSConfig{
			URL:           a.Config.Events.NATSURL,
			SubjectPrefix: a.Config.Events.SubjectPrefix,
			Name:          "tourneycompanion",
		})
		if err != nil {
			return err
		}
		a.onClose(pub.Close)
		retryCfg := messaging.DefaultRetryConfig()
		retryCfg.MaxAttempts = a.Config.Events.PublishAttempts
		a.Events = messaging.NewRetryPublisher(pub, retryCfg)
	}
	return nil
}

func (a *App) setupRedis(ctx context.Context, o options) (redis.Cmdable, error) {
	if a.Config.Cache.Backend != config.CacheRedis {
		return nil, nil
	}
	if o.redis != nil {
		return o.redis, nil
	}
	rc := a.Config.Cache.Redis
	client := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
	a.onClose(client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis %s: %w", rc.Addr, err)
	}
	return client, nil
}

func (a *App) setupStores(ctx context.Context, ids idgen.Generator) (*stores, error) {
	if a.Config.Store.Backend == config.StoreMemory {
		var memOpts []memory.Option
		if ids != nil {
			memOpts = append(memOpts, memory.WithIDGenerator(ids))
		}
		return &stores{
			tournaments: memory.NewRepository[*tournament.Entity](memOpts...),
			players:     memory.NewRepository[*player.Entity](memOpts...),
		}, nil
	}

	dbc := a.Config.Database
	database, err := basic.New(core.DBConfig{
		Driver:       dbc.Driver,
		DSN:          dbc.DSN,
		MaxOpenConns: dbc.MaxOpenConns,
		MaxIdleConns: dbc.MaxIdleConns,
		BusyTimeout:  dbc.BusyTimeout,
	})
	if err != nil {
		return nil, err
	}
	a.onClose(database.Close)

	if dbc.AutoSchema {
		if err := database.ExecScript(ctx, tournament.Schema+player.Schema); err != nil {
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	var repoOpts []repository.Option
	if ids != nil {
		repoOpts = append(repoOpts, repository.WithIDGenerator(ids))
	}
	return &stores{
		tournaments: repository.NewSQLRepository[*tournament.Entity](database, tournament.Table, repoOpts...),
		players:     repository.NewSQLRepository[*player.Entity](database, player.Table, repoOpts...),
		uow:         basic.NewUnitOfWork(database),
	}, nil
}

// decorate 依次叠加缓存与事件装饰器：事件(缓存(存储))
func decorate[E domain.IRecord](repo crud.IRepository[E], resource string, cc config.CacheConfig,
	redisClient redis.Cmdable, publisher messaging.IPublisher) crud.IRepository[E] {
	switch cc.Backend {
	case config.CacheMemory:
		repo = cache.NewRepository[E](repo, cache.NewLocalStore[E](cc.Size, cc.TTL))
	case config.CacheRedis:
		repo = cache.NewRepository[E](repo, cache.NewRedisStore[E](redisClient, cc.KeyPrefix+":"+resource, cc.TTL))
	}
	if publisher != nil {
		repo = messaging.NewRepository[E](repo, publisher, resource)
	}
	return repo
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close 按创建的逆序释放资源
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
