package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/consentd/internal/cache"
	"github.com/dropDatabas3/consentd/internal/config"
	httpx "github.com/dropDatabas3/consentd/internal/http"
	ctrl "github.com/dropDatabas3/consentd/internal/http/controllers/interaction"
	"github.com/dropDatabas3/consentd/internal/http/handlers"
	"github.com/dropDatabas3/consentd/internal/http/router"
	svc "github.com/dropDatabas3/consentd/internal/http/services/interaction"
	"github.com/dropDatabas3/consentd/internal/interaction"
	"github.com/dropDatabas3/consentd/internal/observability/logger"
	"github.com/dropDatabas3/consentd/internal/rate"
	"github.com/dropDatabas3/consentd/internal/store"
	"github.com/dropDatabas3/consentd/internal/store/pg"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// .env opcional; en producción las vars vienen del entorno
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "ruta del archivo de configuración")
	flag.Parse()

	// Sin archivo de config se arranca con defaults + entorno.
	path := *configPath
	if _, statErr := os.Stat(path); statErr != nil {
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("cargando configuración: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "consentd",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistencia
	queries, err := store.New(ctx, store.Config{
		Driver:       cfg.Storage.Driver,
		DSN:          cfg.Storage.DSN,
		MaxOpenConns: cfg.Storage.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Storage.Postgres.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("inicializando store: %w", err)
	}
	defer func() { _ = queries.Close() }()

	// Cache (interacciones)
	cacheClient, err := cache.New(cache.Config{
		Kind:       cfg.Cache.Kind,
		Addr:       cfg.Cache.Redis.Addr,
		Password:   cfg.Cache.Redis.Password,
		DB:         cfg.Cache.Redis.DB,
		Prefix:     cfg.Cache.Redis.Prefix,
		DefaultTTL: cfg.InteractionTTL(),
	})
	if err != nil {
		return fmt.Errorf("inicializando cache: %w", err)
	}
	defer func() { _ = cacheClient.Close() }()

	// Rate limiter (solo con redis disponible)
	var limiter rate.Limiter
	if cfg.Rate.Enabled && cfg.Cache.Kind == "redis" {
		limiter = rate.NewRedisLimiter(
			rdb.NewClient(&rdb.Options{
				Addr:     cfg.Cache.Redis.Addr,
				Password: cfg.Cache.Redis.Password,
				DB:       cfg.Cache.Redis.DB,
			}),
			cfg.Cache.Redis.Prefix+"rl:",
			cfg.Rate.Max,
			cfg.RateWindow(),
		)
	}

	provider := interaction.NewCacheProvider(
		cacheClient,
		cfg.Interaction.CookieName,
		[]byte(cfg.Interaction.SigningKey),
		cfg.InteractionTTL(),
	)

	services := svc.NewServices(svc.Deps{
		Queries:         queries,
		Provider:        provider,
		ScopeResolution: cfg.Features.ScopeResolution,
	})
	controllers := ctrl.NewControllers(services, provider)

	// Métricas: el collector del pool solo aplica al driver postgres
	var poolFn func() *pgxpool.Pool
	if pgStore, ok := queries.(*pg.Store); ok {
		poolFn = pgStore.Pool
	}
	metricsHandler, err := httpx.RegisterMetrics(httpx.MetricsConfig{Pool: poolFn})
	if err != nil {
		return fmt.Errorf("registrando métricas: %w", err)
	}

	handler := router.New(router.Deps{
		Controllers:        controllers,
		AdminGrants:        handlers.NewAdminGrantsHandler(queries),
		Health:             handlers.NewHealthHandler(queries, cacheClient),
		RateLimiter:        limiter,
		AdminAPIKey:        cfg.Admin.APIKey,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		MetricsHandler:     metricsHandler,
	})

	srv := httpx.NewServer(cfg.Server.Addr, handler)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			logger.String("addr", cfg.Server.Addr),
			logger.String("driver", cfg.Storage.Driver),
			logger.Bool("scope_resolution", cfg.Features.ScopeResolution),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
