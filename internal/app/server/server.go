package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"workforce/internal/domain/assignments"
	"workforce/internal/domain/audit"
	"workforce/internal/domain/core"
	"workforce/internal/domain/notifications"
	"workforce/internal/domain/promotion"
	"workforce/internal/domain/reports"
	"workforce/internal/platform/config"
	"workforce/internal/platform/db"
	"workforce/internal/platform/metrics"
	"workforce/internal/platform/pubsub"
	assignmentshandler "workforce/internal/transport/http/handlers/assignments"
	audithandler "workforce/internal/transport/http/handlers/audit"
	employeeshandler "workforce/internal/transport/http/handlers/employees"
	notificationshandler "workforce/internal/transport/http/handlers/notifications"
	reportshandler "workforce/internal/transport/http/handlers/reports"
	roleshandler "workforce/internal/transport/http/handlers/roles"
	"workforce/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *db.Pool
	Redis   *redis.Client
	Metrics *metrics.Collector
	Router  http.Handler
}

// New connects to the database, prepares the schema and assembles the
// router. Redis is optional; without it notifications are stored only.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	app := &App{Config: cfg, DB: pool}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			app.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	auditLog := audit.New(pool)
	if cfg.BootstrapSuperAdminEmail != "" {
		promoted, err := db.BootstrapSuperAdmin(ctx, pool, auditLog, cfg.BootstrapSuperAdminEmail)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("bootstrap super admin: %w", err)
		}
		if promoted {
			slog.Info("bootstrap super admin assigned", "email", cfg.BootstrapSuperAdminEmail)
		}
	}

	var publisher notifications.Publisher
	if cfg.RedisAddr != "" {
		client, err := pubsub.New(ctx, cfg.RedisAddr)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		app.Redis = client
		publisher = notifications.NewRedisPublisher(client)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	app.Metrics = metrics.New(reg)

	coreStore := core.NewStore(pool)
	notifier := notifications.New(notifications.NewStore(pool), publisher)

	promotions := promotion.NewService(
		promotion.NewStore(pool, coreStore),
		auditLog,
		notifier,
		promotion.WithActorConfirmation(cfg.NotifyActorOnRoleChange),
		promotion.WithMetrics(app.Metrics),
	)
	assigner := assignments.NewService(assignments.NewStore(pool, coreStore), auditLog, notifier,
		assignments.WithMetrics(app.Metrics),
	)

	router := chi.NewRouter()
	router.Use(chimw.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(slog.Default(), app.Metrics))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if app.Redis != nil {
			if err := app.Redis.Ping(ctx).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Handle("/metrics", app.Metrics.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}
		r.Use(middleware.RequireUser)
		if cfg.RateLimitPerMinute > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
			r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))
		}

		roleHandler := roleshandler.NewHandler(promotions, coreStore, auditLog, middleware.NewIdempotencyStore(pool))
		roleHandler.RegisterRoutes(r)

		employeesHandler := employeeshandler.NewHandler(coreStore)
		employeesHandler.RegisterRoutes(r)

		assignmentsHandler := assignmentshandler.NewHandler(assigner)
		assignmentsHandler.RegisterRoutes(r)

		notificationsHandler := notificationshandler.NewHandler(notifier)
		notificationsHandler.RegisterRoutes(r)

		auditHandler := audithandler.NewHandler(auditLog)
		auditHandler.RegisterRoutes(r)

		reportsHandler := reportshandler.NewHandler(reports.NewService(reports.NewStore(pool)), coreStore)
		reportsHandler.RegisterRoutes(r)
	})

	app.Router = router
	return app, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Warn("redis close failed", "err", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func newLogger(format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func Run() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.LogFormat))
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("workforce server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "err", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "err", err)
		}
	}
}
