package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/kattacharan/Task-Automation-Bot/internal/api"
	"github.com/kattacharan/Task-Automation-Bot/internal/cache"
	"github.com/kattacharan/Task-Automation-Bot/internal/config"
	"github.com/kattacharan/Task-Automation-Bot/internal/notify"
	"github.com/kattacharan/Task-Automation-Bot/internal/scheduler"
	"github.com/kattacharan/Task-Automation-Bot/internal/service"
	"github.com/kattacharan/Task-Automation-Bot/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAll()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	st, err := openStore(cfg.Store)
	if err != nil {
		slog.Error("opening store failed", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	clk := clock.New()

	var sink notify.Sink = notify.ConsoleSink{}
	if cfg.Notify.WebhookURL != "" {
		sink = notify.NewWebhookSink(cfg.Notify.WebhookURL)
	}

	dispatcher := service.NewDispatcher(st, sink, clk)
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		dispatcher.WithFiredCache(cache.NewRedisCache(rdb, cfg.Redis.TTL))
	}

	sched, err := scheduler.New(cfg.Scheduler.Interval, dispatcher.RunCycle, clk)
	if err != nil {
		slog.Error("creating scheduler failed", "error", err)
		os.Exit(1)
	}
	sched.Start()
	defer sched.Stop()

	assistant := service.NewAssistant(st, clk)
	handler := api.NewHandler(sched, assistant)

	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: loggingMiddleware(api.Router(handler)),
	}

	go func() {
		slog.Info("assistant listening", "addr", cfg.Server.Address,
			"interval", cfg.Scheduler.Interval.String(),
			"store", cfg.Store.Driver,
			"redis", cfg.Redis.Enabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func openStore(cfg config.StoreConfig) (store.ReminderStore, error) {
	if cfg.Driver == "postgres" {
		return store.OpenPostgres(cfg.PostgresURL)
	}
	return store.OpenSQLite(cfg.SQLitePath)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
