// Package usecase は気配値ソースから企業の株価を更新します。
package usecase

import (
	"context"
	"log/slog"

	companyentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/money"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/ratelimiter"
)

// PriceSource は NSE 銘柄の最新価格を返します。
type PriceSource interface {
	Quote(ctx context.Context, symbol string) (float64, error)
}

// CompanyRepository は株価更新に必要な企業ストアの操作だけを切り出したものです。
type CompanyRepository interface {
	ListActive(ctx context.Context) ([]companyentity.Company, error)
	UpdatePrice(ctx context.Context, id uint, price float64) error
}

type MarketUsecase struct {
	companies CompanyRepository
	source    PriceSource
	limiter   ratelimiter.Limiter
}

// NewMarketUsecase は株価更新処理を組み立てます。limiter が nil なら流量制限しません。
func NewMarketUsecase(companies CompanyRepository, source PriceSource, limiter ratelimiter.Limiter) *MarketUsecase {
	return &MarketUsecase{companies: companies, source: source, limiter: limiter}
}

// RefreshPrices は有効な全企業の価格を取得して保存します。
// 失敗した銘柄はログに残して飛ばし、更新できた企業数を返します。
func (u *MarketUsecase) RefreshPrices(ctx context.Context) (int, error) {
	companies, err := u.companies.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, c := range companies {
		if u.limiter != nil {
			if err := u.limiter.Wait(ctx); err != nil {
				return updated, err
			}
		}
		price, err := u.source.Quote(ctx, c.Symbol)
		if err != nil {
			if ctx.Err() != nil {
				return updated, ctx.Err()
			}
			slog.Warn("quote failed, keeping last price", "symbol", c.Symbol, "error", err)
			continue
		}
		price = money.Round2(price)
		if price == c.CurrentPrice {
			continue
		}
		if err := u.companies.UpdatePrice(ctx, c.ID, price); err != nil {
			slog.Error("failed to store price", "symbol", c.Symbol, "error", err)
			continue
		}
		updated++
	}
	slog.Info("prices refreshed", "companies", len(companies), "updated", updated)
	return updated, nil
}
