package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/market/adapters/twelvedata/dto"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/market/usecase"
)

// QuoteClient はTwelve Data外部APIから最新株価を取得するPriceSource実装です。
type QuoteClient struct {
	cfg    Config
	client *http.Client
}

// QuoteClientがPriceSourceを実装していることをコンパイル時に検証します。
var _ usecase.PriceSource = (*QuoteClient)(nil)

// NewQuoteClient は指定された設定とHTTPクライアントでQuoteClientを生成します。
func NewQuoteClient(cfg Config, client *http.Client) *QuoteClient {
	return &QuoteClient{cfg: cfg, client: client}
}

// Quote returns the latest traded price of symbol on the configured exchange.
func (q *QuoteClient) Quote(ctx context.Context, symbol string) (float64, error) {
	v := url.Values{}
	v.Set("symbol", symbol)
	v.Set("exchange", q.cfg.Exchange)
	v.Set("apikey", q.cfg.TwelveDataAPIKey)

	u := fmt.Sprintf("%s/price?%s", q.cfg.BaseURL, v.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}

	res, err := q.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return 0, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	var body dto.PriceResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return 0, err
	}
	if body.Status == "error" {
		return 0, fmt.Errorf("twelvedata: %s", body.Message)
	}

	price, err := strconv.ParseFloat(body.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", body.Price, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("twelvedata: non-positive price %v for %s", price, symbol)
	}
	return price, nil
}
