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

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/app/di"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/app/router"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/db"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/logger"
	infraredis "github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/redis"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/scheduler"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/validation"
)

const (
	defaultPriceRefreshCron = "@every 1m"
	defaultOrderSettleCron  = "@every 30s"
	sessionCleanupCron      = "@hourly"

	jobTimeout      = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// .env は任意。実際の環境変数が優先される
	_ = godotenv.Load()
	logger.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err := validation.RegisterGin(); err != nil {
		slog.Error("failed to register validators", "error", err)
		os.Exit(1)
	}

	// db
	gdb, err := db.Open(db.LoadConfigFromEnv(), di.Models()...)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	// Redis
	var rdb *redisv9.Client
	if cfg := infraredis.LoadConfigFromEnv(); cfg.Enabled() {
		if tmp, err := infraredis.NewRedisClient(cfg); err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv("JWT_SECRET") == "" {
		slog.Warn("JWT_SECRET is not set. Set a strong secret in production.")
	}

	app := di.NewContainer(gdb, rdb)

	sched := scheduler.New(jobTimeout)
	if err := registerJobs(sched, app); err != nil {
		slog.Error("failed to register jobs", "error", err)
		os.Exit(1)
	}
	sched.Start()

	srv := &http.Server{
		Addr:              ":" + getEnv("PORT", "8080"),
		Handler:           router.NewRouter(app.Handlers, app.Options),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	if err := sched.Stop(ctx); err != nil {
		slog.Error("jobs did not finish in time", "error", err)
	}
	slog.Info("server stopped")
}

func registerJobs(sched *scheduler.Scheduler, app *di.Container) error {
	if err := sched.Register("price-refresh", getEnv("PRICE_REFRESH_CRON", defaultPriceRefreshCron), func(ctx context.Context) error {
		n, err := app.Market.RefreshPrices(ctx)
		slog.Info("prices refreshed", "updated", n)
		return err
	}); err != nil {
		return err
	}

	if err := sched.Register("order-settlement", getEnv("ORDER_SETTLE_CRON", defaultOrderSettleCron), func(ctx context.Context) error {
		report, err := app.Trading.SettlePending(ctx)
		if report.Completed+report.Cancelled+report.Failed > 0 {
			slog.Info("orders settled", "completed", report.Completed, "cancelled", report.Cancelled, "failed", report.Failed)
		}
		return err
	}); err != nil {
		return err
	}

	return sched.Register("session-cleanup", sessionCleanupCron, func(ctx context.Context) error {
		n, err := app.Sessions.DeleteExpired(ctx)
		if n > 0 {
			slog.Info("expired sessions removed", "count", n)
		}
		return err
	})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
