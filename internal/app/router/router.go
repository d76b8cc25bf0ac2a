// Package router は HTTP ルートを組み立てます。
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/transport/handler"
	companyhandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/transport/handler"
	ledgerhandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/transport/handler"
	portfoliohandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/portfolio/transport/handler"
	tradinghandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/trading/transport/handler"
	wallethandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/transport/handler"
	platformhandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/http/handler"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/idempotency"
	jwtmw "github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/jwt"
)

// Handlers はルーターがマウントするハンドラーをまとめたものです。
type Handlers struct {
	Health    *platformhandler.HealthHandler
	Auth      *authhandler.AuthHandler
	Company   *companyhandler.CompanyHandler
	Ledger    *ledgerhandler.LedgerHandler
	Orders    *tradinghandler.OrderHandler
	Wallet    *wallethandler.WalletHandler
	Portfolio *portfoliohandler.PortfolioHandler
	// Idempotency は更新系エンドポイントを保護します。nil なら無効。
	Idempotency *idempotency.Middleware
}

// Options は横断的なミドルウェアの設定です。
type Options struct {
	// CORSOrigins は API を呼べる SPA のオリジン。空なら CORS を無効にする。
	CORSOrigins []string
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.Default()

	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Authorization", "Content-Type", idempotency.HeaderKey},
			ExposeHeaders:    []string{idempotency.HeaderReplayed},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)

	api := r.Group("/api")

	// 認証不要
	public := api.Group("/auth")
	{
		public.POST("/signup", h.Auth.Signup)
		public.POST("/login", h.Auth.Login)
		public.POST("/refresh", h.Auth.Refresh)
		public.POST("/logout", h.Auth.Logout)
	}

	// 認証必須のルート
	auth := api.Group("/")
	auth.Use(jwtmw.AuthRequired())

	// 更新系はIdempotency-Keyで再送を吸収する
	mutate := auth.Group("/")
	if h.Idempotency != nil {
		mutate.Use(h.Idempotency.Handler())
	}

	auth.GET("/profile", h.Auth.Profile)
	auth.PUT("/profile", h.Auth.UpdateProfile)

	auth.GET("/companies", h.Company.List)
	auth.GET("/companies/:id", h.Company.Get)
	auth.GET("/companies/symbol/:symbol", h.Company.GetBySymbol)

	auth.GET("/holdings", h.Ledger.ListHoldings)
	auth.GET("/tokenized-shares", h.Ledger.ListTokenizedShares)
	auth.GET("/transactions", h.Ledger.ListTransactions)
	mutate.POST("/holdings", h.Ledger.AddHolding)
	mutate.POST("/tokenize", h.Ledger.Tokenize)
	mutate.POST("/convert-to-shares", h.Ledger.ConvertToShares)

	auth.GET("/orders", h.Orders.List)
	mutate.POST("/orders", h.Orders.Place)
	mutate.POST("/orders/:id/cancel", h.Orders.Cancel)

	auth.GET("/wallet", h.Wallet.Get)
	auth.GET("/wallet/transactions", h.Wallet.ListTransactions)
	mutate.POST("/wallet/add-funds", h.Wallet.AddFunds)
	mutate.POST("/wallet/withdraw", h.Wallet.Withdraw)

	auth.GET("/portfolio/summary", h.Portfolio.Summary)

	return r
}
