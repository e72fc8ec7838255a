package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/adknaupp/cytometry-manager/internal/clients/redis"
	"github.com/adknaupp/cytometry-manager/internal/data/db"
	httpx "github.com/adknaupp/cytometry-manager/internal/http"
	"github.com/adknaupp/cytometry-manager/internal/observability"
	"github.com/adknaupp/cytometry-manager/internal/platform/gcp"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
	"github.com/adknaupp/cytometry-manager/internal/services"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Store    *db.Service
	DB       *gorm.DB
	Metrics  *observability.Metrics
	Repos    Repos
	Services Services
	Handlers Handlers

	redis        *goredis.Client
	objects      gcp.ObjectReader
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New connects every backing service named by cfg and wires the core.
func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a := &App{Log: log, Cfg: cfg}
	if err := a.init(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Cfg
	a.otelShutdown = observability.InitOTel(ctx, a.Log, cfg.Otel)
	if cfg.MetricsEnabled {
		a.Metrics = observability.Init(a.Log)
	}

	store, err := db.Open(ctx, cfg.DB, a.Log)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	a.Store = store
	a.DB = store.DB()
	if cfg.AutoMigrate {
		if err := db.Migrate(a.DB); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
	}

	var lock services.IngestLock = services.NewLocalIngestLock()
	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("init redis: %w", err)
		}
		a.redis = rdb
		lock = redis.NewIngestLock(rdb, a.Log, cfg.IngestLockTTL)
	}

	if cfg.GCSEnabled {
		objects, err := gcp.NewObjectReader(ctx, a.Log)
		if err != nil {
			return fmt.Errorf("init object storage: %w", err)
		}
		a.objects = objects
	}

	a.Repos = wireRepos(a.DB, a.Log)
	a.Services = wireServices(serviceDeps{
		db:      a.DB,
		log:     a.Log,
		cfg:     cfg,
		repos:   a.Repos,
		metrics: a.Metrics,
		lock:    lock,
		objects: a.objects,
	})
	a.Handlers = wireHandlers(a.Services, a.Store.Ping)
	return nil
}

// Router builds the HTTP engine over the wired handlers.
func (a *App) Router() *gin.Engine {
	traceService := ""
	if a.Cfg.Otel.Enabled {
		traceService = a.Cfg.Otel.ServiceName
	}
	return httpx.NewRouter(a.routerConfig(traceService))
}

func (a *App) routerConfig(traceService string) httpx.RouterConfig {
	h := a.Handlers
	return httpx.RouterConfig{
		Log:            a.Log,
		Metrics:        a.Metrics,
		CORSOrigins:    a.Cfg.CORSOrigins,
		TraceService:   traceService,
		IngestHandler:  h.Ingest,
		ProjectHandler: h.Project,
		SubjectHandler: h.Subject,
		SampleHandler:  h.Sample,
		CohortHandler:  h.Cohort,
		DatasetHandler: h.Dataset,
		SearchHandler:  h.Search,
		HealthHandler:  h.Health,
	}
}

// Start launches the metric collectors. They stop on Close.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.Metrics.StartStoreCollector(ctx, a.Log, a.DB)
	a.Metrics.StartRedisCollector(ctx, a.Log, a.redis)
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	if a == nil || a.Handlers.Health == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Start()
	traceService := ""
	if a.Cfg.Otel.Enabled {
		traceService = a.Cfg.Otel.ServiceName
	}
	srv := httpx.NewServer(a.routerConfig(traceService))
	return srv.Run(ctx, ":"+a.Cfg.Port, a.Cfg.ShutdownTimeout)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.objects != nil {
		if err := a.objects.Close(); err != nil {
			a.Log.Warn("object storage close failed", "error", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("redis close failed", "error", err)
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Log.Warn("store close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
