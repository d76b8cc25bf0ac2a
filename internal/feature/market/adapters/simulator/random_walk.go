// Package simulator は開発・デモ用の擬似株価を生成します。
package simulator

import (
	"context"
	"math"
	"math/rand/v2"
	"os"
	"strconv"
	"sync"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/market/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/money"
)

const (
	// DefaultVolatility は1ステップの対数収益率の標準偏差です。
	DefaultVolatility = 0.01
	// MinPrice は価格の下限（NSE の1ティック）です。
	MinPrice = 0.05
)

// PriceLookup は銘柄の最後に保存された価格を返します。
type PriceLookup func(ctx context.Context, symbol string) (float64, error)

// RandomWalk は取得のたびに各銘柄の価格を対数正規分布のステップで動かします。
type RandomWalk struct {
	mu     sync.Mutex
	last   PriceLookup
	step   distuv.Normal
	prices map[string]float64
}

var _ usecase.PriceSource = (*RandomWalk)(nil)

// NewRandomWalk は各銘柄を last が返す価格から開始します。
func NewRandomWalk(last PriceLookup, volatility float64, src rand.Source) *RandomWalk {
	if volatility <= 0 {
		volatility = DefaultVolatility
	}
	return &RandomWalk{
		last:   last,
		step:   distuv.Normal{Mu: 0, Sigma: volatility, Src: src},
		prices: make(map[string]float64),
	}
}

// VolatilityFromEnv は PRICE_VOLATILITY を読み込みます。
func VolatilityFromEnv() float64 {
	v, err := strconv.ParseFloat(os.Getenv("PRICE_VOLATILITY"), 64)
	if err != nil || v <= 0 {
		return DefaultVolatility
	}
	return v
}

func (w *RandomWalk) Quote(ctx context.Context, symbol string) (float64, error) {
	w.mu.Lock()
	p, ok := w.prices[symbol]
	w.mu.Unlock()
	if !ok {
		base, err := w.last(ctx, symbol)
		if err != nil {
			return 0, err
		}
		p = base
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	next := money.Round2(p * math.Exp(w.step.Rand()))
	if next < MinPrice {
		next = MinPrice
	}
	w.prices[symbol] = next
	return next, nil
}
