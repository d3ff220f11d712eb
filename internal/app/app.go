package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/screenplay-backend/internal/data/db"
	"github.com/yungbote/screenplay-backend/internal/data/repos"
	"github.com/yungbote/screenplay-backend/internal/data/seed"
	apphttp "github.com/yungbote/screenplay-backend/internal/http"
	"github.com/yungbote/screenplay-backend/internal/observability"
	"github.com/yungbote/screenplay-backend/internal/platform/dbctx"
	"github.com/yungbote/screenplay-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    repos.Set
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics
	Server   *apphttp.Server

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context, envFile string) (*App, error) {
	cfg, err := LoadConfig(envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel())
	metrics := observability.Init(log, cfg.MetricsEnabled)

	pg, err := db.NewPostgresService(log, cfg.Postgres())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	theDB := pg.DB()
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}

	clients, err := wireClients(log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	if cfg.SeedTemplatesOnStart {
		if err := SeedTemplates(ctx, theDB, reposet, log); err != nil {
			clients.Close()
			_ = pg.Close()
			log.Sync()
			return nil, err
		}
	}

	serviceset := wireServices(theDB, log, cfg, reposet, clients)
	middleware := wireMiddleware(log, cfg, serviceset, clients)
	handlerset := wireHandlers(log, theDB, serviceset)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		Server:       server,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// SeedTemplates upserts the built-in beat sheet templates in one transaction.
func SeedTemplates(ctx context.Context, gdb *gorm.DB, r repos.Set, log *logger.Logger) error {
	return db.NewTxRunner(gdb).InTx(ctx, func(dbc dbctx.Context) error {
		if _, err := seed.Templates(dbc, r.MasterBeatSheet, log); err != nil {
			return fmt.Errorf("seed templates: %w", err)
		}
		return nil
	})
}

// Start launches the background collectors. They stop on Close.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Metrics.StartPostgresCollector(ctx, a.Log, a.DB)
	a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "addr", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
