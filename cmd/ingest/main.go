package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/app/di"
	companyadapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/adapters"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/db"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/logger"
)

// ingest は有効な全企業の価格を1回更新して終了します。
func main() {
	_ = godotenv.Load()
	logger.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	gdb, err := db.Open(db.LoadConfigFromEnv(), di.Models()...)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	uc := di.NewMarketUsecase(companyadapters.NewCompanyRepository(gdb))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := uc.RefreshPrices(ctx)
	if err != nil {
		slog.Error("ingest failed", "updated", n, "error", err)
		os.Exit(1)
	}
	slog.Info("ingest ok", "updated", n)
}
