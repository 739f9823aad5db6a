package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/pos-lane/db"
	"github.com/noah-isme/pos-lane/internal/basket"
	"github.com/noah-isme/pos-lane/internal/config"
	"github.com/noah-isme/pos-lane/internal/discount"
	"github.com/noah-isme/pos-lane/internal/health"
	"github.com/noah-isme/pos-lane/internal/journal"
	"github.com/noah-isme/pos-lane/internal/lane"
	"github.com/noah-isme/pos-lane/internal/logship"
	"github.com/noah-isme/pos-lane/internal/obs"
	"github.com/noah-isme/pos-lane/internal/pricebook"
	"github.com/noah-isme/pos-lane/internal/receipt"
	"github.com/noah-isme/pos-lane/internal/resilience"
	"github.com/noah-isme/pos-lane/internal/security"
	"github.com/noah-isme/pos-lane/internal/settle"
	"github.com/noah-isme/pos-lane/internal/tax"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Logger()

	metricsNamespace := envOrDefault("OBS_METRICS_NAMESPACE", "poslane")
	metricsEnabled := envBool("OBS_ENABLE_PROMETHEUS", true)

	if envBool("RUN_MIGRATIONS", true) {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
		logger.Info().Msg("database schema up to date")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{Logger: logger}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = "pos-lane"

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	// Redis only backs the pricebook read-through cache, so a missing or
	// unreachable instance downgrades the service instead of stopping it.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("parse redis url")
		}
		redisClient = redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, pricebook cache disabled")
			_ = redisClient.Close()
			redisClient = nil
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Error().Err(err).Msg("close redis")
				}
			}()
		}
	}

	var forwarder journal.Forwarder
	var collector *logship.Transport
	if cfg.LogCollectorHost != "" {
		collector = &logship.Transport{
			Host:        cfg.LogCollectorHost,
			Port:        cfg.LogCollectorPort,
			DialTimeout: cfg.LogCollectorDialTimeout,
			Logger:      logger,
		}
		forwarder = collector
		defer func() {
			if err := collector.Close(); err != nil {
				logger.Error().Err(err).Msg("close log collector connection")
			}
		}()
	}

	journalSvc := journal.Service{
		Store:     journal.PGStore{Pool: pool},
		Forwarder: forwarder,
		Logger:    logger,
	}

	catalog := &pricebook.Catalog{
		Store:  pricebook.PGStore{Pool: pool},
		Cache:  pricebook.NewCache(redisClient, cfg.PricebookCacheTTL),
		Logger: logger,
	}

	resolver := &discount.Resolver{
		URL:    discount.ResolveURL(cfg.PricingURL, cfg.PricingBaseURL),
		HTTP:   pricingClient(cfg, logger),
		Logger: logger,
	}

	controller := &settle.Controller{
		Resolver: resolver,
		Tax:      tax.Engine{RateBps: cfg.TaxRateBps},
		Journal:  journalSvc,
		Receipts: receipt.PGStore{Pool: pool},
		Logger:   logger,
	}

	laneHandler := &lane.Handler{
		Lanes: &lane.Registry{NewLedger: func() *basket.Ledger {
			return &basket.Ledger{Catalog: catalog, Journal: journalSvc, Logger: logger}
		}},
		Controller: controller,
		Journal:    journalSvc,
		Catalog:    catalog,
		Sales:      receipt.PGStore{Pool: pool},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if metricsEnabled {
		buckets := obs.ParseBucketsCSV(envOrDefault("OBS_METRICS_BUCKETS_MS", ""))
		r.Use(obs.HTTPObs{Metrics: obs.NewHTTPMetrics(metricsNamespace, buckets, nil)}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(security.BodyLimit{Max: 1 << 16}.Middleware)
	r.Use(security.Headers{Enable: true, EnableHSTS: envBool("SECURE_ENABLE_HSTS", false)}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	if envBool("OBS_ENABLE_PPROF", false) {
		user := envOrDefault("SECURE_PPROF_BASIC_AUTH_USER", "")
		pass := envOrDefault("SECURE_PPROF_BASIC_AUTH_PASS", "")
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), user, pass))
	}

	healthHandler := health.Handler{
		Checker:      health.Deps{Pool: pool, Redis: redisClient},
		DBTimeout:    envDurationMillis("HEALTH_READY_DB_TIMEOUT_MS", 500),
		RedisTimeout: envDurationMillis("HEALTH_READY_REDIS_TIMEOUT_MS", 300),
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", laneHandler.Routes)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info().Str("addr", srv.Addr).Msg("server starting")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		health.SetReady(false)
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}
	logger.Info().Msg("server stopped")
}

// runMigrations applies the embedded schema migrations through the pgx
// driver. golang-migrate selects its database driver by URL scheme, so the
// usual postgres:// prefix is rewritten to pgx5://.
func runMigrations(databaseURL string) error {
	src, err := iofs.New(db.Migrations, "migrations")
	if err != nil {
		return err
	}
	url := databaseURL
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(url, scheme) {
			url = "pgx5://" + strings.TrimPrefix(url, scheme)
			break
		}
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// pricingClient builds the resilient HTTP client used for discount lookups.
// The breaker keeps a flapping pricing service from stalling every payment.
func pricingClient(cfg *config.Config, logger zerolog.Logger) resilience.HTTPClient {
	transport := http.DefaultTransport
	if t, ok := transport.(*http.Transport); ok {
		clone := t.Clone()
		clone.ResponseHeaderTimeout = cfg.PricingRequestTimeout
		transport = clone
	}
	return resilience.HTTPClient{
		Client:      &http.Client{Transport: transport},
		Breaker:     resilience.NewBreaker(5, 0.5, 30*time.Second).WithTarget("pricing").WithLogger(logger),
		BaseBackoff: 100 * time.Millisecond,
		MaxAttempts: 2,
		Jitter:      0.2,
		Timeout:     cfg.PricingRequestTimeout,
	}
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "t", "true", "yes", "on":
			return true
		case "0", "f", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDurationMillis(key string, fallback int) time.Duration {
	return time.Duration(envInt(key, fallback)) * time.Millisecond
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/allocs", pprof.Handler("allocs"))
	mux.Handle("/block", pprof.Handler("block"))
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	mux.Handle("/mutex", pprof.Handler("mutex"))
	mux.Handle("/threadcreate", pprof.Handler("threadcreate"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
