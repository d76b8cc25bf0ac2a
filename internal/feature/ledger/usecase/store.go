package usecase

import (
	"context"

	companyentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/domain/entity"
)

// PositionTx は1つの DB トランザクション内で使えるポジション操作の集合です。
// 引き落としは条件付きで、残高不足なら副作用なしで失敗します。
type PositionTx interface {
	// FindCompany は ID が未知なら ErrCompanyNotFound を返します。
	FindCompany(ctx context.Context, companyID uint) (*companyentity.Company, error)

	// DebitHolding は qty 株を引き落とします。不足なら ErrInsufficientShares。
	// 戻り値は残りの保有で、ゼロになって削除された場合は nil です。
	DebitHolding(ctx context.Context, userID, companyID uint, qty int64) (*entity.Holding, error)
	// CreditHolding は price で買った qty 株を加算し、平均取得単価を更新します。
	CreditHolding(ctx context.Context, userID, companyID uint, qty int64, price float64) (*entity.Holding, error)

	// DebitTokens は qty 個のトークンを引き落とします。不足なら ErrInsufficientTokens。
	// ゼロになったポジションは無効化されます。
	DebitTokens(ctx context.Context, userID, companyID uint, qty int64) (*entity.TokenizedShare, error)
	// CreditTokens は price で qty 個を加算し、トークン化単価を平均し直して行を有効に戻します。
	CreditTokens(ctx context.Context, userID, companyID uint, qty int64, price float64) (*entity.TokenizedShare, error)

	AppendTransaction(ctx context.Context, t *entity.Transaction) error
}

// TransactionFilter は ListTransactions の絞り込み条件です。
type TransactionFilter struct {
	Limit int
	Type  *entity.TransactionType
}

// Store は台帳の永続化を担います。
type Store interface {
	// Atomic は fn を1つの DB トランザクションで実行します。エラーなら全てロールバックされます。
	Atomic(ctx context.Context, fn func(tx PositionTx) error) error

	ListHoldings(ctx context.Context, userID uint) ([]entity.Holding, error)
	// ListTokenizedShares は有効なポジションだけを返します。
	ListTokenizedShares(ctx context.Context, userID uint) ([]entity.TokenizedShare, error)
	// ListTransactions は新しい順に返します。
	ListTransactions(ctx context.Context, userID uint, filter TransactionFilter) ([]entity.Transaction, error)
}
