package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	companyentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	ledgeradapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/adapters"
	ledgerentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/trading/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/trading/usecase"
	walletadapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/adapters"
	walletentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/domain/entity"
	walletusecase "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/wallet/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/db/dbtest"
)

const trader uint = 11

type fixture struct {
	db       *gorm.DB
	uc       *usecase.TradingUsecase
	reliance companyentity.Company
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := dbtest.Open(t,
		&companyentity.Company{},
		&ledgerentity.Holding{}, &ledgerentity.TokenizedShare{}, &ledgerentity.Transaction{},
		&walletentity.Wallet{}, &walletentity.Transaction{},
		&entity.Order{},
	)
	reliance := companyentity.Company{Symbol: "RELIANCE", Name: "Reliance Industries", Sector: "Energy", CurrentPrice: 2500, IsActive: true}
	require.NoError(t, db.Create(&reliance).Error)

	ctx := context.Background()
	_, err := ledgeradapters.NewLedgerTx(db).CreditTokens(ctx, trader, reliance.ID, 40, 2500)
	require.NoError(t, err)
	_, err = walletadapters.NewWalletTx(db).Credit(ctx, trader, 100000)
	require.NoError(t, err)

	return fixture{
		db:       db,
		uc:       usecase.NewTradingUsecase(NewOrderStore(db), usecase.Config{TradeFee: 20}),
		reliance: reliance,
	}
}

func (f fixture) tokens(t *testing.T) int64 {
	t.Helper()
	var ts ledgerentity.TokenizedShare
	require.NoError(t, f.db.Where("user_id = ?", trader).Take(&ts).Error)
	return ts.Quantity
}

func (f fixture) balance(t *testing.T) float64 {
	t.Helper()
	var w walletentity.Wallet
	require.NoError(t, f.db.Where("user_id = ?", trader).Take(&w).Error)
	return w.Balance
}

func (f fixture) orderCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&entity.Order{}).Count(&n).Error)
	return n
}

func TestPlaceOrder_SellRespectsPendingSells(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	o, err := f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "sell", 30, 2600)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, o.Status)
	assert.Equal(t, "RELIANCE", o.Company.Symbol)

	_, err = f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "sell", 11, 2600)
	require.ErrorIs(t, err, usecase.ErrInsufficientTokens)
	assert.EqualValues(t, 1, f.orderCount(t))

	_, err = f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "sell", 10, 2600)
	require.NoError(t, err)

	// 発注だけでは何も動かない
	assert.EqualValues(t, 40, f.tokens(t))
}

func TestPlaceOrder_BuyNeedsBalance(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	_, err := f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "buy", 40, 2500)
	require.ErrorIs(t, err, usecase.ErrInsufficientBalance)
	assert.Zero(t, f.orderCount(t))

	_, err = f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "buy", 39, 2500)
	require.NoError(t, err)
	assert.Equal(t, 100000.0, f.balance(t))
}

func TestPlaceOrder_BuysReserveFunds(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	first, err := f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "buy", 30, 2500)
	require.NoError(t, err)

	// 100000 - 拘束 75020 = 24980 < 25020
	_, err = f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "buy", 10, 2500)
	require.ErrorIs(t, err, usecase.ErrInsufficientBalance)
	assert.EqualValues(t, 1, f.orderCount(t))

	reserved, err := f.uc.ReservedFunds(ctx, trader)
	require.NoError(t, err)
	assert.Equal(t, 75020.0, reserved)

	wallet := walletusecase.NewWalletUsecase(walletadapters.NewWalletStore(f.db)).WithHolds(f.uc)
	_, err = wallet.Withdraw(ctx, trader, 24981, "")
	require.ErrorIs(t, err, walletusecase.ErrInsufficientBalance)
	assert.Equal(t, 100000.0, f.balance(t))

	_, err = wallet.Withdraw(ctx, trader, 24980, "")
	require.NoError(t, err)
	assert.Equal(t, 75020.0, f.balance(t))

	// 取り消すと拘束が外れる
	_, err = f.uc.CancelOrder(ctx, trader, first.ID)
	require.NoError(t, err)
	_, err = wallet.Withdraw(ctx, trader, 75020, "")
	require.NoError(t, err)
	assert.Zero(t, f.balance(t))
}

func TestSettlePending(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	high, err := f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "sell", 30, 2600)
	require.NoError(t, err)
	sell, err := f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "sell", 10, 2450)
	require.NoError(t, err)
	buy, err := f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "buy", 10, 2550)
	require.NoError(t, err)
	low, err := f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "buy", 1, 2400)
	require.NoError(t, err)

	report, err := f.uc.SettlePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.SettleReport{Completed: 2}, report)

	// 40 - 10 sold + 10 bought
	assert.EqualValues(t, 40, f.tokens(t))
	// 100000 - (25500 + 20) + (24500 - 20)
	assert.Equal(t, 98960.0, f.balance(t))

	statuses := map[uint]entity.OrderStatus{}
	var orders []entity.Order
	require.NoError(t, f.db.Find(&orders).Error)
	for _, o := range orders {
		statuses[o.ID] = o.Status
	}
	assert.Equal(t, entity.StatusPending, statuses[high.ID])
	assert.Equal(t, entity.StatusCompleted, statuses[sell.ID])
	assert.Equal(t, entity.StatusCompleted, statuses[buy.ID])
	assert.Equal(t, entity.StatusPending, statuses[low.ID])

	var ledger []ledgerentity.Transaction
	require.NoError(t, f.db.Order("id ASC").Find(&ledger).Error)
	require.Len(t, ledger, 2)
	assert.Equal(t, ledgerentity.TransactionTradeSell, ledger[0].TransactionType)
	assert.Equal(t, 24480.0, ledger[0].TotalAmount)
	assert.Equal(t, ledgerentity.TransactionTradeBuy, ledger[1].TransactionType)
	assert.Equal(t, 25520.0, ledger[1].TotalAmount)
	require.NotNil(t, ledger[1].OrderID)
	assert.Equal(t, buy.ID, *ledger[1].OrderID)

	var walletEntries []walletentity.Transaction
	require.NoError(t, f.db.Order("id ASC").Find(&walletEntries).Error)
	require.Len(t, walletEntries, 2)
	assert.Equal(t, walletentity.TransactionTradeCredit, walletEntries[0].Type)
	assert.Equal(t, walletentity.TransactionTradeDebit, walletEntries[1].Type)
	assert.Equal(t, 98960.0, walletEntries[1].BalanceAfter)

	// 2回目は新しく約定するものがない
	report, err = f.uc.SettlePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.SettleReport{}, report)
}

func TestSettlePending_UnreachableOrdersDoNotBlockBatch(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	// 市場価格に届かない古い指値注文でバッチ上限を超えるまで埋める
	stale := make([]entity.Order, 0, 520)
	for i := 0; i < 520; i++ {
		stale = append(stale, entity.Order{
			UserID:    trader + 1 + uint(i%7),
			CompanyID: f.reliance.ID,
			OrderType: entity.OrderBuy,
			Quantity:  1,
			Price:     1,
			Status:    entity.StatusPending,
		})
	}
	require.NoError(t, f.db.Omit(clause.Associations).CreateInBatches(&stale, 100).Error)

	buy, err := f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "buy", 10, 2600)
	require.NoError(t, err)

	report, err := f.uc.SettlePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.SettleReport{Completed: 1}, report)

	var o entity.Order
	require.NoError(t, f.db.First(&o, buy.ID).Error)
	assert.Equal(t, entity.StatusCompleted, o.Status)
	assert.EqualValues(t, 50, f.tokens(t))

	var stillPending int64
	require.NoError(t, f.db.Model(&entity.Order{}).Where("status = ?", entity.StatusPending).Count(&stillPending).Error)
	assert.EqualValues(t, 520, stillPending)
}

func TestSettlePending_CancelsUncoveredBuy(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	buy, err := f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "buy", 10, 2500)
	require.NoError(t, err)
	_, err = walletadapters.NewWalletTx(f.db).Debit(ctx, trader, 90000)
	require.NoError(t, err)

	report, err := f.uc.SettlePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.SettleReport{Cancelled: 1}, report)

	var o entity.Order
	require.NoError(t, f.db.First(&o, buy.ID).Error)
	assert.Equal(t, entity.StatusCancelled, o.Status)
	assert.Equal(t, 10000.0, f.balance(t))
	assert.EqualValues(t, 40, f.tokens(t))
}

func TestSettlePending_SkipsInactiveCompany(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	_, err := f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "sell", 5, 100)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&companyentity.Company{}).Where("id = ?", f.reliance.ID).Update("is_active", false).Error)

	report, err := f.uc.SettlePending(ctx)
	require.NoError(t, err)
	assert.Equal(t, usecase.SettleReport{}, report)
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()

	f := setup(t)
	ctx := context.Background()

	o, err := f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "sell", 5, 9999)
	require.NoError(t, err)

	_, err = f.uc.CancelOrder(ctx, trader+1, o.ID)
	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)

	cancelled, err := f.uc.CancelOrder(ctx, trader, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, cancelled.Status)

	_, err = f.uc.CancelOrder(ctx, trader, o.ID)
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)

	// 取り消した売り注文はトークンを拘束しない
	_, err = f.uc.PlaceOrder(ctx, trader, f.reliance.ID, "sell", 40, 9999)
	assert.NoError(t, err)

	pending, err := f.uc.ListOrders(ctx, trader, "pending")
	require.NoError(t, err)
	assert.Len(t, pending, 1)
	all, err := f.uc.ListOrders(ctx, trader, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	n, err := f.uc.CountPending(ctx, trader)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
