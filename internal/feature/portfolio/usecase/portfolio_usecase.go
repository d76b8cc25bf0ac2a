// Package usecase はユーザーのポジションをポートフォリオ概要に集計します。
package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	companyentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	ledgerentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/domain/entity"
	walletentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/money"
)

// Positions は企業を読み込んだ状態で保有株と有効なトークンを返します。
type Positions interface {
	ListHoldings(ctx context.Context, userID uint) ([]ledgerentity.Holding, error)
	ListTokenizedShares(ctx context.Context, userID uint) ([]ledgerentity.TokenizedShare, error)
}

type Wallets interface {
	GetWallet(ctx context.Context, userID uint) (*walletentity.Wallet, error)
}

type Orders interface {
	CountPending(ctx context.Context, userID uint) (int64, error)
}

// Summary はユーザーの全資産を時価評価したものです。
// InvestedValue は保有株を平均取得単価で、トークンをトークン化単価で数えます。
type Summary struct {
	RealSharesValue      float64
	TokenizedSharesValue float64
	TotalValue           float64
	InvestedValue        float64
	ProfitLoss           float64
	ProfitLossPercent    float64
	HoldingsCount        int
	TokenizedCount       int
	PendingOrders        int64
	WalletBalance        float64
}

type PortfolioUsecase struct {
	positions Positions
	wallets   Wallets
	orders    Orders
}

func NewPortfolioUsecase(positions Positions, wallets Wallets, orders Orders) *PortfolioUsecase {
	return &PortfolioUsecase{positions: positions, wallets: wallets, orders: orders}
}

// currentPrice は企業行が見つからないポジションではゼロです。
func currentPrice(c *companyentity.Company) float64 {
	if c == nil {
		return 0
	}
	return c.CurrentPrice
}

// Summary は呼ばれるたびにポートフォリオを一から計算し直します。
func (u *PortfolioUsecase) Summary(ctx context.Context, userID uint) (*Summary, error) {
	holdings, err := u.positions.ListHoldings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}
	tokens, err := u.positions.ListTokenizedShares(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tokenized shares: %w", err)
	}
	wallet, err := u.wallets.GetWallet(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	pending, err := u.orders.CountPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count pending orders: %w", err)
	}

	var realValue, tokenized, invested decimal.Decimal
	for _, h := range holdings {
		v := money.Valuate(h.Quantity, h.AvgPrice, currentPrice(h.Company))
		realValue = realValue.Add(decimal.NewFromFloat(v.Current))
		invested = invested.Add(decimal.NewFromFloat(v.Invested))
	}
	for _, t := range tokens {
		v := money.Valuate(t.Quantity, t.TokenizationPrice, currentPrice(t.Company))
		tokenized = tokenized.Add(decimal.NewFromFloat(v.Current))
		invested = invested.Add(decimal.NewFromFloat(v.Invested))
	}
	total := realValue.Add(tokenized)
	pl := total.Sub(invested)

	return &Summary{
		RealSharesValue:      realValue.InexactFloat64(),
		TokenizedSharesValue: tokenized.InexactFloat64(),
		TotalValue:           total.InexactFloat64(),
		InvestedValue:        invested.InexactFloat64(),
		ProfitLoss:           pl.InexactFloat64(),
		ProfitLossPercent:    money.Percent(pl.InexactFloat64(), invested.InexactFloat64()),
		HoldingsCount:        len(holdings),
		TokenizedCount:       len(tokens),
		PendingOrders:        pending,
		WalletBalance:        wallet.Balance,
	}, nil
}
