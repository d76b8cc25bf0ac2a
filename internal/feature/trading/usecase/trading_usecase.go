package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	ledgerentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/domain/entity"
	ledgerusecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/trading/domain/entity"
	walletentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/domain/entity"
	walletusecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/shared/money"
)

const DefaultTradeFee = 20.0

// settleBatch は1回の約定処理で扱う注文数の上限です。残りは次回に回ります。
const settleBatch = 500

// TradeTx は1つの DB トランザクション内で注文が触れる操作をまとめます。
type TradeTx interface {
	Positions() ledgerusecase.PositionTx
	Wallet() walletusecase.BalanceTx

	// AvailableTokens は有効なトークン数量から未約定の売り注文分を引いた値を返します。
	// DB が対応していれば、トークン行はトランザクション終了までロックされます。
	AvailableTokens(ctx context.Context, userID, companyID uint) (int64, error)
	// CommittedBuys は未約定の買い注文の Σ price×quantity と件数を返します。
	// DB が対応していれば、ウォレット行はトランザクション終了までロックされます。
	CommittedBuys(ctx context.Context, userID uint) (notional float64, orders int64, err error)
	CreateOrder(ctx context.Context, o *entity.Order) error
	// FindOrder は注文が userID のものでなければ ErrOrderNotFound を返します。
	FindOrder(ctx context.Context, userID, orderID uint) (*entity.Order, error)
	// TransitionOrder は注文がまだ from の状態のときだけ遷移させます。それ以外は entity.ErrInvalidTransition。
	TransitionOrder(ctx context.Context, orderID uint, from, to entity.OrderStatus) error
}

// Store は注文を永続化します。
type Store interface {
	Atomic(ctx context.Context, fn func(tx TradeTx) error) error
	ListOrders(ctx context.Context, userID uint, status *entity.OrderStatus) ([]entity.Order, error)
	// ListExecutable は現在値が指値に達した有効企業の未約定注文を、古い順に
	// Company を読み込んだ状態で返します。
	ListExecutable(ctx context.Context, limit int) ([]entity.Order, error)
	CountPending(ctx context.Context, userID uint) (int64, error)
	CommittedBuys(ctx context.Context, userID uint) (notional float64, orders int64, err error)
}

type Config struct {
	TradeFee float64
}

// LoadConfig は FEE_TRADE を読み込みます。
func LoadConfig() Config {
	cfg := Config{TradeFee: DefaultTradeFee}
	if v := os.Getenv("FEE_TRADE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			slog.Warn("ignoring invalid fee", "key", "FEE_TRADE", "value", v)
		} else {
			cfg.TradeFee = f
		}
	}
	return cfg
}

// SettleReport は1回の約定処理の集計です。
type SettleReport struct {
	Completed int
	Cancelled int
	Failed    int
}

type TradingUsecase struct {
	store Store
	cfg   Config
}

func NewTradingUsecase(store Store, cfg Config) *TradingUsecase {
	return &TradingUsecase{store: store, cfg: cfg}
}

// PlaceOrder は指値注文を検証し、未約定として記録します。
func (u *TradingUsecase) PlaceOrder(ctx context.Context, userID, companyID uint, orderType string, qty int64, price float64) (*entity.Order, error) {
	t := entity.OrderType(orderType)
	switch {
	case !t.Valid():
		return nil, ErrInvalidOrderType
	case qty <= 0:
		return nil, ErrInvalidQuantity
	case price <= 0:
		return nil, ErrInvalidPrice
	}

	order := &entity.Order{
		UserID:    userID,
		CompanyID: companyID,
		OrderType: t,
		Quantity:  qty,
		Price:     price,
		Status:    entity.StatusPending,
	}
	err := u.store.Atomic(ctx, func(tx TradeTx) error {
		company, err := ledgerusecase.ActiveCompany(ctx, tx.Positions(), companyID)
		if err != nil {
			return err
		}

		if t == entity.OrderSell {
			if money.Net(price, qty, u.cfg.TradeFee) <= 0 {
				return ErrOrderTooSmall
			}
			available, err := tx.AvailableTokens(ctx, userID, companyID)
			if err != nil {
				return err
			}
			if qty > available {
				return ErrInsufficientTokens
			}
		} else {
			w, err := tx.Wallet().GetOrCreate(ctx, userID)
			if err != nil {
				return err
			}
			notional, n, err := tx.CommittedBuys(ctx, userID)
			if err != nil {
				return err
			}
			free := money.Sub(w.Balance, u.reservation(notional, n))
			if free < money.Total(price, qty, u.cfg.TradeFee) {
				return ErrInsufficientBalance
			}
		}

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		order.Company = company
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("order placed", "user_id", userID, "order_id", order.ID, "type", t, "quantity", qty, "price", price)
	return order, nil
}

// CancelOrder はユーザーの未約定注文を取り消します。
func (u *TradingUsecase) CancelOrder(ctx context.Context, userID, orderID uint) (*entity.Order, error) {
	var order *entity.Order
	err := u.store.Atomic(ctx, func(tx TradeTx) error {
		var err error
		if order, err = tx.FindOrder(ctx, userID, orderID); err != nil {
			return err
		}
		if err := entity.Transition(order.Status, entity.StatusCancelled); err != nil {
			return err
		}
		if err := tx.TransitionOrder(ctx, order.ID, order.Status, entity.StatusCancelled); err != nil {
			return err
		}
		order.Status = entity.StatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("order cancelled", "user_id", userID, "order_id", orderID)
	return order, nil
}

// ListOrders はユーザーの注文を新しい順に返します。状態で絞り込めます。
func (u *TradingUsecase) ListOrders(ctx context.Context, userID uint, status string) ([]entity.Order, error) {
	if status == "" {
		return u.store.ListOrders(ctx, userID, nil)
	}
	s := entity.OrderStatus(status)
	if !s.Valid() {
		return nil, ErrInvalidStatus
	}
	return u.store.ListOrders(ctx, userID, &s)
}

// reservation は notional 分の買い注文 n 件が約定時に引き落とす金額です。
func (u *TradingUsecase) reservation(notional float64, n int64) float64 {
	return money.Add(notional, money.Mul(u.cfg.TradeFee, n))
}

// ReservedFunds は未約定の買い注文に必要な資金を手数料込みで返します。
func (u *TradingUsecase) ReservedFunds(ctx context.Context, userID uint) (float64, error) {
	notional, n, err := u.store.CommittedBuys(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.reservation(notional, n), nil
}

func (u *TradingUsecase) CountPending(ctx context.Context, userID uint) (int64, error) {
	return u.store.CountPending(ctx, userID)
}

// executable は相場が注文の指値に達しているかを返します。
func executable(o *entity.Order) bool {
	if o.Company == nil {
		return false
	}
	if o.OrderType == entity.OrderBuy {
		return o.Company.CurrentPrice <= o.Price
	}
	return o.Company.CurrentPrice >= o.Price
}

// SettlePending は現在値が指値に達した未約定注文をすべて約定させます。
// 注文ごとに個別のトランザクションで、注文価格で約定します。資金や
// トークンが足りなくなった注文は取り消されます。
func (u *TradingUsecase) SettlePending(ctx context.Context) (SettleReport, error) {
	var report SettleReport
	orders, err := u.store.ListExecutable(ctx, settleBatch)
	if err != nil {
		return report, err
	}
	for i := range orders {
		o := &orders[i]
		if !executable(o) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		status, err := u.settle(ctx, o)
		switch {
		case errors.Is(err, entity.ErrInvalidTransition):
			// その間にユーザーが取り消した
		case err != nil:
			report.Failed++
			slog.Error("order settlement failed", "order_id", o.ID, "error", err)
		case status == entity.StatusCompleted:
			report.Completed++
		default:
			report.Cancelled++
		}
	}
	return report, nil
}

func (u *TradingUsecase) settle(ctx context.Context, o *entity.Order) (entity.OrderStatus, error) {
	final := entity.StatusCompleted
	err := u.store.Atomic(ctx, func(tx TradeTx) error {
		err := u.execute(ctx, tx, o)
		if errors.Is(err, ledgerusecase.ErrInsufficientTokens) || errors.Is(err, walletusecase.ErrInsufficientBalance) {
			// 引き落としは条件付きなので、まだ何も書き込まれていない
			slog.Warn("order cannot be covered, cancelling", "order_id", o.ID, "user_id", o.UserID, "reason", err)
			final = entity.StatusCancelled
			return tx.TransitionOrder(ctx, o.ID, entity.StatusPending, entity.StatusCancelled)
		}
		if err != nil {
			return err
		}
		return tx.TransitionOrder(ctx, o.ID, entity.StatusPending, entity.StatusCompleted)
	})
	if err != nil {
		return "", err
	}
	if final == entity.StatusCompleted {
		slog.Info("order executed", "order_id", o.ID, "user_id", o.UserID, "type", o.OrderType,
			"quantity", o.Quantity, "price", o.Price)
	}
	return final, nil
}

func (u *TradingUsecase) execute(ctx context.Context, tx TradeTx, o *entity.Order) error {
	fee := u.cfg.TradeFee
	orderID := o.ID
	positions := tx.Positions()

	if o.OrderType == entity.OrderBuy {
		total := money.Total(o.Price, o.Quantity, fee)
		if _, err := walletusecase.Apply(ctx, tx.Wallet(), o.UserID, walletusecase.Entry{
			Type:        walletentity.TransactionTradeDebit,
			Amount:      total,
			Description: fmt.Sprintf("Bought %d %s @ %s", o.Quantity, o.Company.Symbol, money.FormatINR(o.Price)),
			OrderID:     &orderID,
		}); err != nil {
			return err
		}
		if _, err := positions.CreditTokens(ctx, o.UserID, o.CompanyID, o.Quantity, o.Price); err != nil {
			return err
		}
		return positions.AppendTransaction(ctx, &ledgerentity.Transaction{
			UserID:          o.UserID,
			CompanyID:       o.CompanyID,
			TransactionType: ledgerentity.TransactionTradeBuy,
			Quantity:        o.Quantity,
			Price:           o.Price,
			Fees:            fee,
			TotalAmount:     total,
			OrderID:         &orderID,
		})
	}

	if _, err := positions.DebitTokens(ctx, o.UserID, o.CompanyID, o.Quantity); err != nil {
		return err
	}
	net := money.Net(o.Price, o.Quantity, fee)
	if _, err := walletusecase.Apply(ctx, tx.Wallet(), o.UserID, walletusecase.Entry{
		Type:        walletentity.TransactionTradeCredit,
		Amount:      net,
		Description: fmt.Sprintf("Sold %d %s @ %s", o.Quantity, o.Company.Symbol, money.FormatINR(o.Price)),
		OrderID:     &orderID,
	}); err != nil {
		return err
	}
	return positions.AppendTransaction(ctx, &ledgerentity.Transaction{
		UserID:          o.UserID,
		CompanyID:       o.CompanyID,
		TransactionType: ledgerentity.TransactionTradeSell,
		Quantity:        o.Quantity,
		Price:           o.Price,
		Fees:            fee,
		TotalAmount:     net,
		OrderID:         &orderID,
	})
}
