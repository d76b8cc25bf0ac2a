// Package adapters はウォレットを GORM で永続化します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/money"
)

const updateAttempts = 3

type walletGorm struct {
	db *gorm.DB
}

var _ usecase.Store = (*walletGorm)(nil)

func NewWalletStore(db *gorm.DB) *walletGorm {
	return &walletGorm{db: db}
}

func (s *walletGorm) Atomic(ctx context.Context, fn func(tx usecase.BalanceTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewWalletTx(tx))
	})
}

func (s *walletGorm) ListTransactions(ctx context.Context, userID uint, limit int) ([]entity.Transaction, error) {
	var txs []entity.Transaction
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// WalletTx は開いている *gorm.DB トランザクション上で usecase.BalanceTx を実装します。
type WalletTx struct {
	DB *gorm.DB
}

var _ usecase.BalanceTx = WalletTx{}

func NewWalletTx(tx *gorm.DB) WalletTx {
	return WalletTx{DB: tx}
}

func (t WalletTx) GetOrCreate(ctx context.Context, userID uint) (*entity.Wallet, error) {
	db := t.DB.WithContext(ctx)
	var w entity.Wallet
	err := db.Where("user_id = ?", userID).Take(&w).Error
	if err == nil {
		return &w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	// 同時作成はユニーク制約で一件に収束する
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entity.Wallet{UserID: userID}).Error; err != nil {
		return nil, err
	}
	w = entity.Wallet{}
	if err := db.Where("user_id = ?", userID).Take(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (t WalletTx) Credit(ctx context.Context, userID uint, amount float64) (*entity.Wallet, error) {
	return t.move(ctx, userID, amount)
}

func (t WalletTx) Debit(ctx context.Context, userID uint, amount float64) (*entity.Wallet, error) {
	return t.move(ctx, userID, -amount)
}

// move は条件付き UPDATE で delta を適用し、残高がマイナスになる更新は拒否します。
// パイサ単位の移動を繰り返しても誤差が出ないよう、新残高は decimal で計算します。
func (t WalletTx) move(ctx context.Context, userID uint, delta float64) (*entity.Wallet, error) {
	db := t.DB.WithContext(ctx)
	for attempt := 0; attempt < updateAttempts; attempt++ {
		w, err := t.GetOrCreate(ctx, userID)
		if err != nil {
			return nil, err
		}
		next := money.Add(w.Balance, delta)
		if next < 0 {
			return nil, usecase.ErrInsufficientBalance
		}
		result := db.Model(&entity.Wallet{}).
			Where("id = ? AND balance = ? AND balance >= ?", w.ID, w.Balance, -delta).
			Update("balance", next)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			w.Balance = next
			return w, nil
		}
	}
	return nil, usecase.ErrConcurrentUpdate
}

func (t WalletTx) AppendTransaction(ctx context.Context, tx *entity.Transaction) error {
	return t.DB.WithContext(ctx).Create(tx).Error
}
