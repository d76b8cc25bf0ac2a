package di

import (
	authadapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/adapters"
	authentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/domain/entity"
	companyentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	ledgerentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/domain/entity"
	tradingentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/trading/domain/entity"
	walletentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/domain/entity"
)

// Models は AutoMigrate が管理する全テーブルを親から順に並べたものです。
func Models() []interface{} {
	return []interface{}{
		&authentity.User{},
		&authadapters.SessionModel{},
		&companyentity.Company{},
		&ledgerentity.Holding{},
		&ledgerentity.TokenizedShare{},
		&ledgerentity.Transaction{},
		&walletentity.Wallet{},
		&walletentity.Transaction{},
		&tradingentity.Order{},
	}
}
