package app

import (
	"errors"
	"fmt"
	"net/http"

	"alianca-go/internal/config"
	"alianca-go/internal/db"
	activitydomain "alianca-go/internal/domain/activity"
	"alianca-go/internal/domain/dashboard"
	financedomain "alianca-go/internal/domain/finance"
	groupdomain "alianca-go/internal/domain/group"
	profiledomain "alianca-go/internal/domain/profile"
	routinedomain "alianca-go/internal/domain/routine"
	"alianca-go/internal/enrich"
	"alianca-go/internal/gateway"
	postgresgateway "alianca-go/internal/gateway/postgres"
	supabasegateway "alianca-go/internal/gateway/supabase"
	"alianca-go/internal/metrics"
	"alianca-go/internal/repository/inmemory"
	redisrepo "alianca-go/internal/repository/redis"
	"alianca-go/internal/repository/tables"
	"alianca-go/internal/storage"
	"alianca-go/internal/transport/httpserver"
	"alianca-go/internal/transport/httpserver/handler"
	"alianca-go/pkg/logger"
	goredis "github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     http.Handler
	metrics    *metrics.Metrics
	db         *gorm.DB
	redis      *goredis.Client
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg, log)
}

// NewWithConfig wires every component from cfg.
func NewWithConfig(cfg config.Config, log logger.Logger) (*App, error) {
	a := &App{cfg: cfg, metrics: metrics.New()}

	log.Info("app: initializing gateway", "backend", cfg.Gateway.Backend)
	gw, err := a.newGateway(log)
	if err != nil {
		a.Close()
		return nil, err
	}
	gw = a.metrics.Gateway(gw)

	avatars, mediaRoot := newAvatarStore(cfg.Storage, cfg.Supabase)
	log.Info("app: avatar storage", "backend", cfg.Storage.Backend)

	cache, err := a.newGroupCache(log)
	if err != nil {
		a.Close()
		return nil, err
	}

	loc := cfg.Location()

	profiles := profiledomain.NewService(tables.NewProfileRepository(gw), avatars)

	groupOpts := []groupdomain.Option{
		groupdomain.WithCache(cache, cfg.Cache.TTL),
		groupdomain.WithMaxMembers(cfg.Groups.MaxMembers),
	}
	if avatars != nil {
		groupOpts = append(groupOpts, groupdomain.WithAvatarStore(avatars))
	}
	groups := groupdomain.NewService(tables.NewGroupRepository(gw), profiles, groupOpts...)

	activities := activitydomain.NewService(tables.NewActivityRepository(gw), groups, newEnricher(cfg.TMDB, a.metrics, log))
	finance := financedomain.NewService(tables.NewTransactionRepository(gw), groups, loc)
	routines := routinedomain.NewService(tables.NewRoutineRepository(gw), groups)
	home := dashboard.NewService(groups, routines, activities, finance)

	handlers := handler.New(handler.Services{
		Profiles:   profiles,
		Groups:     groups,
		Activities: activities,
		Finance:    finance,
		Routines:   routines,
		Dashboard:  home,
	}, loc, log)

	log.Info("app: initializing router")
	a.router = httpserver.NewRouter(cfg, handlers, httpserver.RouterOptions{
		Metrics:   a.metrics,
		MediaRoot: mediaRoot,
	}, log)

	log.Info("app: initializing http server")
	a.httpServer = httpserver.New(cfg, a.router)
	return a, nil
}

func (a *App) newGateway(log logger.Logger) (gateway.Gateway, error) {
	switch a.cfg.Gateway.Backend {
	case config.GatewayMemory:
		return tables.NewMemoryGateway(), nil
	case config.GatewaySupabase:
		return supabasegateway.New(supabasegateway.Config{
			URL:     a.cfg.Supabase.URL,
			APIKey:  a.cfg.Supabase.ServiceKey,
			Timeout: a.cfg.Gateway.Timeout,
		}), nil
	case config.GatewayPostgres:
		log.Info("app: initializing database")
		dbConn, err := db.NewPostgres(a.cfg.DB, log)
		if err != nil {
			return nil, err
		}
		a.db = dbConn
		if a.cfg.DB.AutoMigrate {
			log.Info("app: applying migrations")
			if err := db.Migrate(a.cfg.DB.URL()); err != nil {
				return nil, err
			}
		}
		return postgresgateway.New(dbConn), nil
	default:
		return nil, fmt.Errorf("app: unknown gateway backend %q", a.cfg.Gateway.Backend)
	}
}

func (a *App) newGroupCache(log logger.Logger) (groupdomain.Cache, error) {
	switch a.cfg.Cache.Backend {
	case config.CacheMemory:
		return inmemory.NewGroupCache(), nil
	case config.CacheRedis:
		client, err := redisrepo.NewClient(a.cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		a.redis = client
		return redisrepo.NewGroupCache(client, log), nil
	default:
		return nil, nil
	}
}

// newAvatarStore returns a nil store when uploads are disabled, plus the
// directory to serve under /media/ for local storage.
func newAvatarStore(cfg config.StorageConfig, supabase config.SupabaseConfig) (storage.Store, string) {
	switch cfg.Backend {
	case config.StorageLocal:
		store := storage.NewLocalStore(cfg.LocalRoot, cfg.PublicBaseURL)
		return store, store.Root()
	case config.StorageSupabase:
		return storage.NewSupabaseStore(supabase.URL, supabase.ServiceKey, cfg.Bucket, cfg.Timeout), ""
	default:
		return nil, ""
	}
}

func newEnricher(cfg config.TMDBConfig, m *metrics.Metrics, log logger.Logger) *enrich.Enricher {
	opts := []enrich.Option{enrich.WithRecorder(m), enrich.WithTimeout(cfg.Timeout)}
	if cfg.APIKey == "" {
		return enrich.New(nil, log, opts...)
	}
	movies := enrich.NewTMDB(enrich.TMDBConfig{
		BaseURL:  cfg.BaseURL,
		APIKey:   cfg.APIKey,
		Language: cfg.Language,
		Timeout:  cfg.Timeout,
	})
	return enrich.New(movies, log, opts...)
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) Metrics() *metrics.Metrics {
	return a.metrics
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
