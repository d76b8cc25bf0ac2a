package di

import (
	"context"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/app/router"
	authadapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/adapters"
	authhandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/transport/handler"
	authusecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/usecase"
	companyadapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/adapters"
	companyhandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/transport/handler"
	companyusecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/usecase"
	ledgeradapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/adapters"
	ledgerhandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/transport/handler"
	ledgerusecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/usecase"
	marketusecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/market/usecase"
	portfoliohandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/portfolio/transport/handler"
	portfoliousecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/portfolio/usecase"
	tradingadapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/trading/adapters"
	tradinghandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/trading/transport/handler"
	tradingusecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/trading/usecase"
	walletadapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/adapters"
	wallethandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/transport/handler"
	walletusecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/cache"
	platformhandler "github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/http/handler"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/idempotency"
	jwtmw "github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/jwt"
)

// CompanyStore は API と株価更新処理が共有する企業リポジトリです。
type CompanyStore = companyusecase.CompanyRepository

// Container は組み立て済みのアプリケーションです。Handlers はルーターに、usecase はジョブに渡します。
type Container struct {
	Handlers router.Handlers
	Options  router.Options

	Market   *marketusecase.MarketUsecase
	Trading  *tradingusecase.TradingUsecase
	Sessions authusecase.SessionRepository
}

// NewContainer は db の上に全フィーチャーを組み立てます。rdb は nil でもよく、その場合は
// キャッシュと冪等性チェックを無効にし、セッションは DB に保存します。
func NewContainer(db *gorm.DB, rdb *redis.Client) *Container {
	// Repository
	userRepo := authadapters.NewUserGorm(db)
	sessionRepo := NewSessionRepository(rdb, db)
	// Redisキャッシュでラップ
	companyRepo := cache.NewCachingCompanyRepository(rdb, cache.TimeUntilNextMarketOpen, companyadapters.NewCompanyRepository(db), "companies")
	ledgerStore := ledgeradapters.NewLedgerStore(db)
	walletStore := walletadapters.NewWalletStore(db)
	orderStore := tradingadapters.NewOrderStore(db)

	// Usecase
	jwtGen := jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), jwtmw.AccessTTLFromEnv())
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, jwtGen, authusecase.LoadConfig())
	companyUC := companyusecase.NewCompanyUsecase(companyRepo)
	ledgerUC := ledgerusecase.NewLedgerUsecase(ledgerStore, ledgerusecase.LoadConfig())
	tradingUC := tradingusecase.NewTradingUsecase(orderStore, tradingusecase.LoadConfig())
	// 出金は未約定の買い注文に必要な資金を残す
	walletUC := walletusecase.NewWalletUsecase(walletStore).WithHolds(tradingUC)
	portfolioUC := portfoliousecase.NewPortfolioUsecase(ledgerUC, walletUC, tradingUC)

	var idem *idempotency.Middleware
	if rdb != nil {
		idem = idempotency.New(rdb, idempotency.DefaultTTL)
	}

	return &Container{
		Handlers: router.Handlers{
			Health:      platformhandler.NewHealthHandler(healthChecks(db, rdb)),
			Auth:        authhandler.NewAuthHandler(authUC),
			Company:     companyhandler.NewCompanyHandler(companyUC),
			Ledger:      ledgerhandler.NewLedgerHandler(ledgerUC),
			Orders:      tradinghandler.NewOrderHandler(tradingUC),
			Wallet:      wallethandler.NewWalletHandler(walletUC),
			Portfolio:   portfoliohandler.NewPortfolioHandler(portfolioUC),
			Idempotency: idem,
		},
		Options:  router.Options{CORSOrigins: corsOrigins()},
		Market:   NewMarketUsecase(companyRepo),
		Trading:  tradingUC,
		Sessions: sessionRepo,
	}
}

func healthChecks(db *gorm.DB, rdb *redis.Client) map[string]platformhandler.Check {
	checks := map[string]platformhandler.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

// corsOrigins はカンマ区切りの CORS_ORIGINS を解釈します。
func corsOrigins() []string {
	var out []string
	for _, o := range strings.Split(os.Getenv("CORS_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
