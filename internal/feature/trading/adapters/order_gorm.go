// Package adapters は注文を GORM で永続化し、台帳とウォレットをまたいで約定させます。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	companyentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	ledgeradapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/adapters"
	ledgerentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/domain/entity"
	ledgerusecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/trading/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/trading/usecase"
	walletadapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/adapters"
	walletentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/domain/entity"
	walletusecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/money"
)

type orderGorm struct {
	db *gorm.DB
}

var _ usecase.Store = (*orderGorm)(nil)

func NewOrderStore(db *gorm.DB) *orderGorm {
	return &orderGorm{db: db}
}

func (s *orderGorm) Atomic(ctx context.Context, fn func(tx usecase.TradeTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tradeTx{
			db:        tx,
			positions: ledgeradapters.NewLedgerTx(tx),
			wallet:    walletadapters.NewWalletTx(tx),
		})
	})
}

func (s *orderGorm) ListOrders(ctx context.Context, userID uint, status *entity.OrderStatus) ([]entity.Order, error) {
	q := s.db.WithContext(ctx).Preload("Company").Where("user_id = ?", userID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var orders []entity.Order
	if err := q.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListExecutable は現在値が指値に達した注文を古い順に返します。
// 指値判定をSQL側で行うため、約定しない古い注文がバッチを埋めることはありません。
func (s *orderGorm) ListExecutable(ctx context.Context, limit int) ([]entity.Order, error) {
	var orders []entity.Order
	if err := s.db.WithContext(ctx).
		InnerJoins("Company", s.db.Where(&companyentity.Company{IsActive: true})).
		Where("orders.status = ?", entity.StatusPending).
		Where(`((orders.order_type = ? AND "Company".current_price <= orders.price) OR (orders.order_type = ? AND "Company".current_price >= orders.price))`,
			entity.OrderBuy, entity.OrderSell).
		Order("orders.created_at ASC").Order("orders.id ASC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderGorm) CountPending(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&entity.Order{}).
		Where("user_id = ? AND status = ?", userID, entity.StatusPending).
		Count(&n).Error
	return n, err
}

func (s *orderGorm) CommittedBuys(ctx context.Context, userID uint) (float64, int64, error) {
	return committedBuys(s.db.WithContext(ctx), userID)
}

func committedBuys(db *gorm.DB, userID uint) (float64, int64, error) {
	var row struct {
		Notional float64
		Orders   int64
	}
	err := db.Model(&entity.Order{}).
		Select("COALESCE(SUM(price * quantity), 0) AS notional, COUNT(*) AS orders").
		Where("user_id = ? AND order_type = ? AND status = ?", userID, entity.OrderBuy, entity.StatusPending).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return money.Round2(row.Notional), row.Orders, nil
}

// tradeTx は注文とポジション更新で1つの *gorm.DB トランザクションを共有します。
type tradeTx struct {
	db        *gorm.DB
	positions ledgeradapters.LedgerTx
	wallet    walletadapters.WalletTx
}

func (t tradeTx) Positions() ledgerusecase.PositionTx { return t.positions }
func (t tradeTx) Wallet() walletusecase.BalanceTx     { return t.wallet }

func (t tradeTx) AvailableTokens(ctx context.Context, userID, companyID uint) (int64, error) {
	db := t.db.WithContext(ctx)

	var tokens ledgerentity.TokenizedShare
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND company_id = ? AND is_active = ?", userID, companyID, true).
		Take(&tokens).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var committed int64
	if err := db.Model(&entity.Order{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("user_id = ? AND company_id = ? AND order_type = ? AND status = ?", userID, companyID, entity.OrderSell, entity.StatusPending).
		Scan(&committed).Error; err != nil {
		return 0, err
	}
	return tokens.Quantity - committed, nil
}

func (t tradeTx) CommittedBuys(ctx context.Context, userID uint) (float64, int64, error) {
	db := t.db.WithContext(ctx)
	var w walletentity.Wallet
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).Take(&w).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, err
	}
	return committedBuys(db, userID)
}

func (t tradeTx) CreateOrder(ctx context.Context, o *entity.Order) error {
	return t.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error
}

func (t tradeTx) FindOrder(ctx context.Context, userID, orderID uint) (*entity.Order, error) {
	var o entity.Order
	if err := t.db.WithContext(ctx).
		Preload("Company").
		Where("id = ? AND user_id = ?", orderID, userID).
		Take(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (t tradeTx) TransitionOrder(ctx context.Context, orderID uint, from, to entity.OrderStatus) error {
	if err := entity.Transition(from, to); err != nil {
		return err
	}
	result := t.db.WithContext(ctx).Model(&entity.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entity.ErrInvalidTransition
	}
	return nil
}
