package usecase

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	companyentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/money"
)

const (
	DefaultTokenizationFee = 50.0
	DefaultConversionFee   = 25.0

	defaultListLimit = 50
	maxListLimit     = 200
)

// Config は INR 建ての定額手数料を保持します。
type Config struct {
	TokenizationFee float64
	ConversionFee   float64
}

// LoadConfig は FEE_TOKENIZATION と FEE_CONVERSION を読み込みます。
func LoadConfig() Config {
	return Config{
		TokenizationFee: feeFromEnv("FEE_TOKENIZATION", DefaultTokenizationFee),
		ConversionFee:   feeFromEnv("FEE_CONVERSION", DefaultConversionFee),
	}
}

// feeFromEnv は非負の手数料を解釈します。未設定や不正値なら既定値を使います。
func feeFromEnv(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		slog.Warn("ignoring invalid fee", "key", key, "value", v)
		return fallback
	}
	return f
}

// Result は台帳操作後の状態です。保有がゼロになった場合 Holding は nil です。
type Result struct {
	Holding        *entity.Holding
	TokenizedShare *entity.TokenizedShare
	Transaction    *entity.Transaction
}

// LedgerUsecase は保有株とトークンの間で株式を移動させます。
type LedgerUsecase struct {
	store Store
	cfg   Config
}

func NewLedgerUsecase(store Store, cfg Config) *LedgerUsecase {
	return &LedgerUsecase{store: store, cfg: cfg}
}

func validate(qty int64, price float64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if price <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

// ActiveCompany はトランザクション内で企業を読み込み、取引不可の企業を弾きます。
func ActiveCompany(ctx context.Context, tx PositionTx, companyID uint) (*companyentity.Company, error) {
	company, err := tx.FindCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !company.IsActive {
		return nil, ErrCompanyInactive
	}
	return company, nil
}

// Tokenize は demat 株 qty 株を price 建てのトークンに変換します。
func (u *LedgerUsecase) Tokenize(ctx context.Context, userID, companyID uint, qty int64, price float64) (*Result, error) {
	if err := validate(qty, price); err != nil {
		return nil, err
	}
	res := &Result{}
	err := u.store.Atomic(ctx, func(tx PositionTx) error {
		company, err := ActiveCompany(ctx, tx, companyID)
		if err != nil {
			return err
		}
		if res.Holding, err = tx.DebitHolding(ctx, userID, companyID, qty); err != nil {
			return err
		}
		if res.TokenizedShare, err = tx.CreditTokens(ctx, userID, companyID, qty, price); err != nil {
			return err
		}
		res.Transaction = &entity.Transaction{
			UserID:          userID,
			CompanyID:       companyID,
			TransactionType: entity.TransactionTokenize,
			Quantity:        qty,
			Price:           price,
			Fees:            u.cfg.TokenizationFee,
			TotalAmount:     money.Total(price, qty, u.cfg.TokenizationFee),
		}
		if err := tx.AppendTransaction(ctx, res.Transaction); err != nil {
			return err
		}
		res.Transaction.Company = company
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("shares tokenized", "user_id", userID, "company_id", companyID, "quantity", qty, "price", price,
		"reference", res.Transaction.Reference)
	return res, nil
}

// ConvertToShares はトークン qty 個を取得単価 price の demat 株に戻します。
func (u *LedgerUsecase) ConvertToShares(ctx context.Context, userID, companyID uint, qty int64, price float64) (*Result, error) {
	if err := validate(qty, price); err != nil {
		return nil, err
	}
	res := &Result{}
	err := u.store.Atomic(ctx, func(tx PositionTx) error {
		company, err := ActiveCompany(ctx, tx, companyID)
		if err != nil {
			return err
		}
		if res.TokenizedShare, err = tx.DebitTokens(ctx, userID, companyID, qty); err != nil {
			return err
		}
		if res.Holding, err = tx.CreditHolding(ctx, userID, companyID, qty, price); err != nil {
			return err
		}
		res.Transaction = &entity.Transaction{
			UserID:          userID,
			CompanyID:       companyID,
			TransactionType: entity.TransactionDetokenize,
			Quantity:        qty,
			Price:           price,
			Fees:            u.cfg.ConversionFee,
			TotalAmount:     money.Total(price, qty, u.cfg.ConversionFee),
		}
		if err := tx.AppendTransaction(ctx, res.Transaction); err != nil {
			return err
		}
		res.Transaction.Company = company
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("tokens converted", "user_id", userID, "company_id", companyID, "quantity", qty, "price", price,
		"reference", res.Transaction.Reference)
	return res, nil
}

// AddHolding は外部から入庫された demat 株を記録します。
func (u *LedgerUsecase) AddHolding(ctx context.Context, userID, companyID uint, qty int64, price float64) (*Result, error) {
	if err := validate(qty, price); err != nil {
		return nil, err
	}
	res := &Result{}
	err := u.store.Atomic(ctx, func(tx PositionTx) error {
		company, err := ActiveCompany(ctx, tx, companyID)
		if err != nil {
			return err
		}
		if res.Holding, err = tx.CreditHolding(ctx, userID, companyID, qty, price); err != nil {
			return err
		}
		res.Transaction = &entity.Transaction{
			UserID:          userID,
			CompanyID:       companyID,
			TransactionType: entity.TransactionDeposit,
			Quantity:        qty,
			Price:           price,
			TotalAmount:     money.Mul(price, qty),
		}
		if err := tx.AppendTransaction(ctx, res.Transaction); err != nil {
			return err
		}
		res.Transaction.Company = company
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (u *LedgerUsecase) ListHoldings(ctx context.Context, userID uint) ([]entity.Holding, error) {
	return u.store.ListHoldings(ctx, userID)
}

func (u *LedgerUsecase) ListTokenizedShares(ctx context.Context, userID uint) ([]entity.TokenizedShare, error) {
	return u.store.ListTokenizedShares(ctx, userID)
}

// ListTransactions は最大 limit 件（既定 50、上限 200）を返します。種別で絞り込めます。
func (u *LedgerUsecase) ListTransactions(ctx context.Context, userID uint, limit int, txType string) ([]entity.Transaction, error) {
	filter := TransactionFilter{Limit: limit}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if txType != "" {
		t := entity.TransactionType(txType)
		if !t.Valid() {
			return nil, ErrInvalidTransactionType
		}
		filter.Type = &t
	}
	return u.store.ListTransactions(ctx, userID, filter)
}
