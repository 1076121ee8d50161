package app

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/tandemstudy/tandem-backend/internal/db"
	httpserver "github.com/tandemstudy/tandem-backend/internal/http"
	"github.com/tandemstudy/tandem-backend/internal/observability"
	"github.com/tandemstudy/tandem-backend/internal/pkg/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *httpserver.Server
	Cfg      Config
	Repos    Repos
	Services Services

	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "tandem-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	dbService, err := db.NewService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbService.DB()

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		log.Info("Redis cache enabled", "addr", cfg.RedisAddr)
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, cache)
	if err != nil {
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(theDB, log, serviceset)

	server := httpserver.NewServer(httpserver.RouterConfig{
		Log:                    log,
		StudySessionHandler:    handlerset.StudySession,
		SourceStudyHandler:     handlerset.SourceStudy,
		LearningPartnerHandler: handlerset.LearningPartner,
		HealthHandler:          handlerset.Health,
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Starting HTTP server", "addr", a.Cfg.HTTPAddr)
	return a.Server.Run(a.Cfg.HTTPAddr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
