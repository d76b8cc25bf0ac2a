package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/money"
)

const (
	// MaxAmount は1回の操作あたりの上限額（INR）です。
	MaxAmount = 1_000_000.0

	defaultListLimit = 50
	maxListLimit     = 200
)

// BalanceTx は1つの DB トランザクション内で使えるウォレット操作の集合です。
type BalanceTx interface {
	// GetOrCreate はユーザーのウォレットを返します。初回アクセス時は残高ゼロで作成します。
	GetOrCreate(ctx context.Context, userID uint) (*entity.Wallet, error)
	// Credit は amount を加算し、更新後のウォレットを返します。
	Credit(ctx context.Context, userID uint, amount float64) (*entity.Wallet, error)
	// Debit は amount を減算します。不足なら書き込まずに ErrInsufficientBalance を返します。
	Debit(ctx context.Context, userID uint, amount float64) (*entity.Wallet, error)
	AppendTransaction(ctx context.Context, t *entity.Transaction) error
}

// Store はウォレットを永続化します。
type Store interface {
	Atomic(ctx context.Context, fn func(tx BalanceTx) error) error
	// ListTransactions は新しい順に返します。
	ListTransactions(ctx context.Context, userID uint, limit int) ([]entity.Transaction, error)
}

// Result は操作後のウォレットと、その操作で作られたエントリです。
type Result struct {
	Wallet      *entity.Wallet
	Transaction *entity.Transaction
}

// Entry は記録する残高移動の内容です。
type Entry struct {
	Type        entity.TransactionType
	Amount      float64
	Description string
	OrderID     *uint
}

// Apply は tx 内で残高を動かし、対応するエントリを追記します。
// add と trade_credit が入金で、それ以外は出金です。
func Apply(ctx context.Context, tx BalanceTx, userID uint, e Entry) (*Result, error) {
	var (
		w   *entity.Wallet
		err error
	)
	switch e.Type {
	case entity.TransactionAdd, entity.TransactionTradeCredit:
		w, err = tx.Credit(ctx, userID, e.Amount)
	default:
		w, err = tx.Debit(ctx, userID, e.Amount)
	}
	if err != nil {
		return nil, err
	}
	t := &entity.Transaction{
		WalletID:     w.ID,
		UserID:       userID,
		Type:         e.Type,
		Amount:       e.Amount,
		BalanceAfter: w.Balance,
		Description:  e.Description,
		OrderID:      e.OrderID,
	}
	if err := tx.AppendTransaction(ctx, t); err != nil {
		return nil, err
	}
	return &Result{Wallet: w, Transaction: t}, nil
}

// Holds は未約定の買い注文に拘束済みの資金を返します。
type Holds interface {
	ReservedFunds(ctx context.Context, userID uint) (float64, error)
}

type WalletUsecase struct {
	store Store
	holds Holds
}

func NewWalletUsecase(store Store) *WalletUsecase {
	return &WalletUsecase{store: store}
}

// WithHolds を設定すると、Withdraw は拘束分を残して出金します。
func (u *WalletUsecase) WithHolds(h Holds) *WalletUsecase {
	u.holds = h
	return u
}

// normalizeAmount はパイサ単位に丸め、1回あたりの上限を検証します。
func normalizeAmount(amount float64) (float64, error) {
	rounded := money.Round2(amount)
	if rounded <= 0 || rounded > MaxAmount {
		return 0, ErrInvalidAmount
	}
	return rounded, nil
}

// GetWallet はユーザーのウォレットを返します。初回アクセス時に作成します。
func (u *WalletUsecase) GetWallet(ctx context.Context, userID uint) (*entity.Wallet, error) {
	var w *entity.Wallet
	err := u.store.Atomic(ctx, func(tx BalanceTx) error {
		var err error
		w, err = tx.GetOrCreate(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// AddFunds は amount を入金します。説明が空なら既定の文言を使います。
func (u *WalletUsecase) AddFunds(ctx context.Context, userID uint, amount float64, description string) (*Result, error) {
	amount, err := normalizeAmount(amount)
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = fmt.Sprintf("Added %s to wallet", money.FormatINR(amount))
	}
	return u.apply(ctx, userID, Entry{Type: entity.TransactionAdd, Amount: amount, Description: description})
}

// Withdraw は amount を出金します。未約定の買い注文で拘束されていない残高を
// 超える場合は、状態を変えずに失敗します。
func (u *WalletUsecase) Withdraw(ctx context.Context, userID uint, amount float64, description string) (*Result, error) {
	amount, err := normalizeAmount(amount)
	if err != nil {
		return nil, err
	}
	if description == "" {
		description = fmt.Sprintf("Withdrew %s from wallet", money.FormatINR(amount))
	}
	reserved, err := u.reserved(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reserved <= 0 {
		return u.apply(ctx, userID, Entry{Type: entity.TransactionWithdraw, Amount: amount, Description: description})
	}

	var res *Result
	err = u.store.Atomic(ctx, func(tx BalanceTx) error {
		w, err := tx.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		if money.Sub(w.Balance, reserved) < amount {
			return fmt.Errorf("%w: %s is reserved for pending buy orders", ErrInsufficientBalance, money.FormatINR(reserved))
		}
		res, err = Apply(ctx, tx, userID, Entry{Type: entity.TransactionWithdraw, Amount: amount, Description: description})
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("wallet updated", "user_id", userID, "type", entity.TransactionWithdraw, "amount", amount,
		"balance", res.Wallet.Balance, "reserved", reserved)
	return res, nil
}

func (u *WalletUsecase) reserved(ctx context.Context, userID uint) (float64, error) {
	if u.holds == nil {
		return 0, nil
	}
	v, err := u.holds.ReservedFunds(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("reserved funds: %w", err)
	}
	return v, nil
}

func (u *WalletUsecase) apply(ctx context.Context, userID uint, e Entry) (*Result, error) {
	var res *Result
	err := u.store.Atomic(ctx, func(tx BalanceTx) error {
		var err error
		res, err = Apply(ctx, tx, userID, e)
		return err
	})
	if err != nil {
		return nil, err
	}
	slog.Info("wallet updated", "user_id", userID, "type", e.Type, "amount", e.Amount, "balance", res.Wallet.Balance)
	return res, nil
}

// ListTransactions は最大 limit 件（既定 50、上限 200）を新しい順に返します。
func (u *WalletUsecase) ListTransactions(ctx context.Context, userID uint, limit int) ([]entity.Transaction, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return u.store.ListTransactions(ctx, userID, limit)
}
