// Package adapters は台帳を GORM で永続化します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	companyentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/money"
)

// creditAttempts は加算時の CAS ループの上限回数です。
const creditAttempts = 3

// ledgerGorm はledger.StoreのGORM実装です。
type ledgerGorm struct {
	db *gorm.DB
}

var _ usecase.Store = (*ledgerGorm)(nil)

func NewLedgerStore(db *gorm.DB) *ledgerGorm {
	return &ledgerGorm{db: db}
}

// Atomic は fn を db.Transaction 内で実行します。
func (s *ledgerGorm) Atomic(ctx context.Context, fn func(tx usecase.PositionTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewLedgerTx(tx))
	})
}

func (s *ledgerGorm) ListHoldings(ctx context.Context, userID uint) ([]entity.Holding, error) {
	var holdings []entity.Holding
	if err := s.db.WithContext(ctx).
		Preload("Company").
		Where("user_id = ? AND quantity > 0", userID).
		Order("id ASC").
		Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

func (s *ledgerGorm) ListTokenizedShares(ctx context.Context, userID uint) ([]entity.TokenizedShare, error) {
	var tokens []entity.TokenizedShare
	if err := s.db.WithContext(ctx).
		Preload("Company").
		Where("user_id = ? AND is_active = ? AND quantity > 0", userID, true).
		Order("id ASC").
		Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

// ListTransactions は新しい順に取引履歴を返します。
func (s *ledgerGorm) ListTransactions(ctx context.Context, userID uint, filter usecase.TransactionFilter) ([]entity.Transaction, error) {
	q := s.db.WithContext(ctx).
		Preload("Company").
		Where("user_id = ?", userID)
	if filter.Type != nil {
		q = q.Where("transaction_type = ?", *filter.Type)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var txs []entity.Transaction
	if err := q.Order("created_at DESC").Order("id DESC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// LedgerTx は開いている *gorm.DB トランザクション上で usecase.PositionTx を実装します。
// 他のフィーチャーはこれを埋め込み、自分のトランザクション内でポジションを動かします。
type LedgerTx struct {
	DB *gorm.DB
}

var _ usecase.PositionTx = LedgerTx{}

func NewLedgerTx(tx *gorm.DB) LedgerTx {
	return LedgerTx{DB: tx}
}

func (t LedgerTx) FindCompany(ctx context.Context, companyID uint) (*companyentity.Company, error) {
	var c companyentity.Company
	if err := t.DB.WithContext(ctx).Where("id = ?", companyID).Take(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (t LedgerTx) DebitHolding(ctx context.Context, userID, companyID uint, qty int64) (*entity.Holding, error) {
	db := t.DB.WithContext(ctx)
	result := db.Model(&entity.Holding{}).
		Where("user_id = ? AND company_id = ? AND quantity >= ?", userID, companyID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, usecase.ErrInsufficientShares
	}

	var h entity.Holding
	if err := db.Where("user_id = ? AND company_id = ?", userID, companyID).Take(&h).Error; err != nil {
		return nil, err
	}
	if h.Quantity > 0 {
		return &h, nil
	}
	// 残高ゼロの保有は行ごと削除
	if err := db.Delete(&entity.Holding{}, h.ID).Error; err != nil {
		return nil, err
	}
	return nil, nil
}

func (t LedgerTx) CreditHolding(ctx context.Context, userID, companyID uint, qty int64, price float64) (*entity.Holding, error) {
	db := t.DB.WithContext(ctx)
	for attempt := 0; attempt < creditAttempts; attempt++ {
		var h entity.Holding
		err := db.Where("user_id = ? AND company_id = ?", userID, companyID).Take(&h).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			h = entity.Holding{UserID: userID, CompanyID: companyID, Quantity: qty, AvgPrice: price}
			result := db.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&h)
			if result.Error != nil {
				return nil, result.Error
			}
			if result.RowsAffected == 1 {
				return &h, nil
			}
			continue
		case err != nil:
			return nil, err
		}

		newQty := h.Quantity + qty
		avg := money.WeightedAverage(h.Quantity, h.AvgPrice, qty, price)
		result := db.Model(&entity.Holding{}).
			Where("id = ? AND quantity = ?", h.ID, h.Quantity).
			Updates(map[string]interface{}{"quantity": newQty, "avg_price": avg})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			h.Quantity, h.AvgPrice = newQty, avg
			return &h, nil
		}
	}
	return nil, usecase.ErrConcurrentUpdate
}

func (t LedgerTx) DebitTokens(ctx context.Context, userID, companyID uint, qty int64) (*entity.TokenizedShare, error) {
	db := t.DB.WithContext(ctx)
	result := db.Model(&entity.TokenizedShare{}).
		Where("user_id = ? AND company_id = ? AND is_active = ? AND quantity >= ?", userID, companyID, true, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, usecase.ErrInsufficientTokens
	}

	var ts entity.TokenizedShare
	if err := db.Where("user_id = ? AND company_id = ?", userID, companyID).Take(&ts).Error; err != nil {
		return nil, err
	}
	if ts.Quantity == 0 {
		if err := db.Model(&entity.TokenizedShare{}).Where("id = ?", ts.ID).Update("is_active", false).Error; err != nil {
			return nil, err
		}
		ts.IsActive = false
	}
	return &ts, nil
}

func (t LedgerTx) CreditTokens(ctx context.Context, userID, companyID uint, qty int64, price float64) (*entity.TokenizedShare, error) {
	db := t.DB.WithContext(ctx)
	for attempt := 0; attempt < creditAttempts; attempt++ {
		var ts entity.TokenizedShare
		err := db.Where("user_id = ? AND company_id = ?", userID, companyID).Take(&ts).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ts = entity.TokenizedShare{UserID: userID, CompanyID: companyID, Quantity: qty, TokenizationPrice: price, IsActive: true}
			result := db.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&ts)
			if result.Error != nil {
				return nil, result.Error
			}
			if result.RowsAffected == 1 {
				return &ts, nil
			}
			continue
		case err != nil:
			return nil, err
		}

		// 無効化された行は必ず数量ゼロなので、平均単価は price から始め直す
		newQty := ts.Quantity + qty
		avg := money.WeightedAverage(ts.Quantity, ts.TokenizationPrice, qty, price)
		result := db.Model(&entity.TokenizedShare{}).
			Where("id = ? AND quantity = ?", ts.ID, ts.Quantity).
			Updates(map[string]interface{}{"quantity": newQty, "tokenization_price": avg, "is_active": true})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 1 {
			ts.Quantity, ts.TokenizationPrice, ts.IsActive = newQty, avg, true
			return &ts, nil
		}
	}
	return nil, usecase.ErrConcurrentUpdate
}

// AppendTransaction は台帳に1行追加します。関連は書き込みません。
func (t LedgerTx) AppendTransaction(ctx context.Context, tx *entity.Transaction) error {
	return t.DB.WithContext(ctx).Omit(clause.Associations).Create(tx).Error
}
