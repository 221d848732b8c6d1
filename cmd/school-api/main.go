package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/school-admin/internal/config"
	apihttp "github.com/pribylovaa/school-admin/internal/http"
	"github.com/pribylovaa/school-admin/internal/ratelimit"
	"github.com/pribylovaa/school-admin/internal/service"
	"github.com/pribylovaa/school-admin/internal/storage/postgres"
	"github.com/pribylovaa/school-admin/internal/telemetry"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// Подключение к БД c таймаутом.
	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	str, err := postgres.New(dbCtx, cfg.DB.DatabaseURL)
	dbCancel()
	if err != nil {
		log.Error("postgres_connect_failed", slog.String("err", err.Error()))
		rootCancel()
		os.Exit(1)
	}
	log.Info("postgres_connected")

	if cfg.DB.AutoMigrate {
		if err := str.Migrate(rootCtx); err != nil {
			log.Error("migrations_failed", slog.String("err", err.Error()))
			rootCancel()
			str.Close()
			os.Exit(1)
		}
		log.Info("migrations_applied")
	}

	// Ограничение частоты входа — только при заданном Redis.
	opts := apihttp.Options{
		Logger:   log,
		Timeout:  cfg.Timeouts.Service,
		BasePath: cfg.HTTP.BasePath,
	}
	var limiter *ratelimit.Limiter
	if cfg.Redis.RedisURL != "" {
		limiter, err = ratelimit.New(cfg.Redis.RedisURL, cfg.RateLimit.LoginLimit, cfg.RateLimit.LoginWindow)
		if err != nil {
			log.Error("redis_connect_failed", slog.String("err", err.Error()))
			rootCancel()
			str.Close()
			os.Exit(1)
		}
		opts.LoginLimiter = limiter
		log.Info("redis_connected")
	} else {
		log.Warn("login_rate_limit_disabled")
	}

	shutdownTracing, tracing, err := telemetry.Init(rootCtx, cfg.Telemetry)
	if err != nil {
		log.Error("telemetry_init_failed", slog.String("err", err.Error()))
		rootCancel()
		str.Close()
		os.Exit(1)
	}

	// Сервис.
	srvc := service.New(str, cfg.Auth, log)
	log.Info("service_initialized")

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if atomic.LoadInt32(&ready) == 1 && str.Ping(r.Context()) == nil {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", tracing(apihttp.NewRouter(srvc, opts)))

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Фоновая очистка просроченных refresh-токенов.
	janitorDone := startRefreshJanitor(rootCtx, str, log, cfg.Janitor.Period)

	serveErrCh := make(chan error, 1)
	go func() {
		log.Info("http_listen_start", slog.String("addr", httpAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	atomic.StoreInt32(&ready, 1)

	// Ожидание сигнала завершения или фатальной ошибки сервера.
	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	// Graceful stop с таймаутом.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_force_stop", slog.String("err", err.Error()))
		_ = httpSrv.Close()
	} else {
		log.Info("http_stopped")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("telemetry_shutdown_failed", slog.String("err", err.Error()))
	}

	// Явная очистка перед выходом.
	shutdownCancel()
	rootCancel()
	<-janitorDone
	if limiter != nil {
		_ = limiter.Close()
	}
	str.Close()

	log.Info("service_stopped")
	os.Exit(0)
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}

// expiredTokenDeleter — часть хранилища, нужная janitor.
type expiredTokenDeleter interface {
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// startRefreshJanitor запускает фоновую задачу, которая периодически удаляет
// просроченные refresh-токены. period <= 0 отключает очистку.
// Возвращаемый канал закрывается после остановки задачи.
func startRefreshJanitor(ctx context.Context, storage expiredTokenDeleter, log *slog.Logger, period time.Duration) <-chan struct{} {
	done := make(chan struct{})
	if period <= 0 {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				n, err := storage.DeleteExpiredTokens(ctx, time.Now().UTC())
				if err != nil {
					log.Error("refresh_janitor_failed", slog.String("err", err.Error()))
					continue
				}
				if n > 0 {
					log.Info("refresh_janitor_swept", slog.Int64("deleted", n))
				}
			}
		}
	}()

	return done
}
