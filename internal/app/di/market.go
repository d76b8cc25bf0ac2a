// Package di はアプリケーションのコンポーネントを生成する依存性注入用のファクトリーを提供します。
package di

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/market/adapters/simulator"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/market/adapters/twelvedata"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/market/usecase"
	infrahttp "github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/http"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/ratelimiter"
)

const (
	// PriceSourceSimulator は既定の価格フィードです。
	PriceSourceSimulator = "simulator"
	// PriceSourceTwelveData は NSE のライブ気配値を取得します。
	PriceSourceTwelveData = "twelvedata"

	// Twelve Data の無料プランは1分あたり8クレジット。
	defaultQuoteRateLimit = 8
)

// priceSource は PRICE_SOURCE を解決します。API キーのない twelvedata はシミュレーターに戻します。
func priceSource() string {
	switch v := os.Getenv("PRICE_SOURCE"); v {
	case PriceSourceTwelveData:
		if twelvedata.LoadConfig().TwelveDataAPIKey == "" {
			slog.Warn("TWELVE_DATA_API_KEY is not set, falling back to simulator")
			return PriceSourceSimulator
		}
		return v
	case "", PriceSourceSimulator:
		return PriceSourceSimulator
	default:
		slog.Warn("unknown PRICE_SOURCE, using simulator", "value", v)
		return PriceSourceSimulator
	}
}

// NewPriceSource は PRICE_SOURCE で選ばれた価格フィードを返します。
// シミュレーターは各銘柄を DB に保存された価格から開始します。
func NewPriceSource(last simulator.PriceLookup) usecase.PriceSource {
	if priceSource() == PriceSourceTwelveData {
		cfg := twelvedata.LoadConfig()
		return twelvedata.NewQuoteClient(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
	}
	seed := uint64(time.Now().UnixNano())
	return simulator.NewRandomWalk(last, simulator.VolatilityFromEnv(), rand.NewPCG(seed, seed>>1))
}

// NewQuoteLimiter は TWELVE_DATA_RATE_LIMIT（1分あたりの呼び出し数）を読み込みます。シミュレーターは制限しません。
func NewQuoteLimiter() ratelimiter.Limiter {
	if priceSource() != PriceSourceTwelveData {
		return nil
	}
	limit := defaultQuoteRateLimit
	if v, err := strconv.Atoi(os.Getenv("TWELVE_DATA_RATE_LIMIT")); err == nil {
		limit = v
	}
	return ratelimiter.NewRateLimiter(limit, time.Minute)
}

// NewMarketUsecase は companies を対象に株価更新処理を組み立てます。
func NewMarketUsecase(companies CompanyStore) *usecase.MarketUsecase {
	last := func(ctx context.Context, symbol string) (float64, error) {
		c, err := companies.FindBySymbol(ctx, symbol)
		if err != nil {
			return 0, err
		}
		return c.CurrentPrice, nil
	}
	return usecase.NewMarketUsecase(companies, NewPriceSource(last), NewQuoteLimiter())
}
