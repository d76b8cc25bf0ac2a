package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/app/di"
	companyadapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/adapters"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/db"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/logger"
)

// 参照用のNSE銘柄（価格はINR、時価総額は千万ルピー単位）
var companies = []entity.Company{
	{Symbol: "RELIANCE", Name: "Reliance Industries Ltd", Sector: "Energy", CurrentPrice: 2456.75, MarketCap: 1662000},
	{Symbol: "TCS", Name: "Tata Consultancy Services Ltd", Sector: "Information Technology", CurrentPrice: 3678.90, MarketCap: 1346000},
	{Symbol: "HDFCBANK", Name: "HDFC Bank Ltd", Sector: "Financial Services", CurrentPrice: 1642.30, MarketCap: 1248000},
	{Symbol: "INFY", Name: "Infosys Ltd", Sector: "Information Technology", CurrentPrice: 1489.60, MarketCap: 618000},
	{Symbol: "ICICIBANK", Name: "ICICI Bank Ltd", Sector: "Financial Services", CurrentPrice: 1087.45, MarketCap: 763000},
	{Symbol: "HINDUNILVR", Name: "Hindustan Unilever Ltd", Sector: "FMCG", CurrentPrice: 2534.20, MarketCap: 595000},
	{Symbol: "ITC", Name: "ITC Ltd", Sector: "FMCG", CurrentPrice: 438.65, MarketCap: 547000},
	{Symbol: "SBIN", Name: "State Bank of India", Sector: "Financial Services", CurrentPrice: 612.80, MarketCap: 547000},
	{Symbol: "BHARTIARTL", Name: "Bharti Airtel Ltd", Sector: "Telecommunication", CurrentPrice: 1165.40, MarketCap: 659000},
	{Symbol: "LT", Name: "Larsen & Toubro Ltd", Sector: "Construction", CurrentPrice: 3412.55, MarketCap: 469000},
	{Symbol: "M&M", Name: "Mahindra & Mahindra Ltd", Sector: "Automobile", CurrentPrice: 1873.10, MarketCap: 233000},
	{Symbol: "BAJAJ-AUTO", Name: "Bajaj Auto Ltd", Sector: "Automobile", CurrentPrice: 6845.00, MarketCap: 193000},
}

func main() {
	_ = godotenv.Load()
	logger.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))

	cfg := db.LoadConfigFromEnv()
	// シードはテーブルが無いと失敗するので常にマイグレーションする
	cfg.Migrate = true
	gdb, err := db.Open(cfg, di.Models()...)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for i := range companies {
		companies[i].IsActive = true
	}
	if err := companyadapters.NewCompanyRepository(gdb).Upsert(ctx, companies); err != nil {
		slog.Error("failed to seed companies", "error", err)
		os.Exit(1)
	}
	slog.Info("seed ok", "companies", len(companies))
}
