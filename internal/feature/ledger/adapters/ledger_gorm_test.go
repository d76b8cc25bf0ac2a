package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	companyentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/ledger/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/db/dbtest"
)

const testUser uint = 7

func setupTestDB(t *testing.T) (*gorm.DB, companyentity.Company, companyentity.Company) {
	t.Helper()
	db := dbtest.Open(t, &companyentity.Company{}, &entity.Holding{}, &entity.TokenizedShare{}, &entity.Transaction{})

	reliance := companyentity.Company{Symbol: "RELIANCE", Name: "Reliance Industries", Sector: "Energy", CurrentPrice: 2500, IsActive: true}
	suspended := companyentity.Company{Symbol: "SUSP", Name: "Suspended Ltd", Sector: "Misc", CurrentPrice: 10, IsActive: true}
	require.NoError(t, db.Create(&reliance).Error)
	require.NoError(t, db.Create(&suspended).Error)
	require.NoError(t, db.Model(&suspended).Update("is_active", false).Error)
	suspended.IsActive = false
	return db, reliance, suspended
}

func newUsecase(db *gorm.DB) *usecase.LedgerUsecase {
	return usecase.NewLedgerUsecase(NewLedgerStore(db), usecase.Config{TokenizationFee: 50, ConversionFee: 25})
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestLedger_TokenizeAndConvertScenario(t *testing.T) {
	t.Parallel()

	db, reliance, _ := setupTestDB(t)
	uc := newUsecase(db)
	ctx := context.Background()

	_, err := uc.AddHolding(ctx, testUser, reliance.ID, 100, 2400)
	require.NoError(t, err)

	res, err := uc.Tokenize(ctx, testUser, reliance.ID, 40, 2500)
	require.NoError(t, err)
	require.NotNil(t, res.Holding)
	assert.EqualValues(t, 60, res.Holding.Quantity)
	assert.Equal(t, 2400.0, res.Holding.AvgPrice)
	assert.EqualValues(t, 40, res.TokenizedShare.Quantity)
	assert.Equal(t, 2500.0, res.TokenizedShare.TokenizationPrice)
	assert.Equal(t, entity.TransactionTokenize, res.Transaction.TransactionType)
	assert.Equal(t, 50.0, res.Transaction.Fees)
	assert.Equal(t, 100050.0, res.Transaction.TotalAmount)
	assert.Len(t, res.Transaction.Reference, 36)
	assert.Equal(t, "RELIANCE", res.Transaction.Company.Symbol)

	res, err = uc.ConvertToShares(ctx, testUser, reliance.ID, 20, 2550)
	require.NoError(t, err)
	assert.EqualValues(t, 20, res.TokenizedShare.Quantity)
	assert.EqualValues(t, 80, res.Holding.Quantity)
	assert.Equal(t, 2437.5, res.Holding.AvgPrice)
	assert.Equal(t, 25.0, res.Transaction.Fees)
	assert.Equal(t, 51025.0, res.Transaction.TotalAmount)

	holdings, err := uc.ListHoldings(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	require.NotNil(t, holdings[0].Company)
	assert.Equal(t, "RELIANCE", holdings[0].Company.Symbol)

	txs, err := uc.ListTransactions(ctx, testUser, 0, "")
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, entity.TransactionDetokenize, txs[0].TransactionType)
	assert.Equal(t, entity.TransactionDeposit, txs[2].TransactionType)

	only, err := uc.ListTransactions(ctx, testUser, 10, "tokenize")
	require.NoError(t, err)
	require.Len(t, only, 1)
	assert.EqualValues(t, 40, only[0].Quantity)
}

func TestLedger_QuantityConservation(t *testing.T) {
	t.Parallel()

	db, reliance, _ := setupTestDB(t)
	uc := newUsecase(db)
	ctx := context.Background()

	_, err := uc.AddHolding(ctx, testUser, reliance.ID, 75, 100)
	require.NoError(t, err)

	steps := []struct {
		tokenize bool
		qty      int64
	}{
		{true, 30}, {false, 10}, {true, 55}, {false, 70}, {true, 1},
	}
	for _, s := range steps {
		if s.tokenize {
			_, err = uc.Tokenize(ctx, testUser, reliance.ID, s.qty, 110)
		} else {
			_, err = uc.ConvertToShares(ctx, testUser, reliance.ID, s.qty, 120)
		}
		require.NoError(t, err)

		var h entity.Holding
		var ts entity.TokenizedShare
		var held, tokens int64
		if db.Where("user_id = ?", testUser).Take(&h).Error == nil {
			held = h.Quantity
		}
		if db.Where("user_id = ?", testUser).Take(&ts).Error == nil {
			tokens = ts.Quantity
		}
		assert.EqualValues(t, 75, held+tokens)
	}
}

func TestLedger_TokenizeInsufficientShares_NoStateChange(t *testing.T) {
	t.Parallel()

	db, reliance, _ := setupTestDB(t)
	uc := newUsecase(db)
	ctx := context.Background()

	_, err := uc.AddHolding(ctx, testUser, reliance.ID, 10, 2400)
	require.NoError(t, err)

	_, err = uc.Tokenize(ctx, testUser, reliance.ID, 11, 2500)
	require.ErrorIs(t, err, usecase.ErrInsufficientShares)

	var h entity.Holding
	require.NoError(t, db.Where("user_id = ?", testUser).Take(&h).Error)
	assert.EqualValues(t, 10, h.Quantity)
	assert.Zero(t, countRows(t, db, &entity.TokenizedShare{}))
	assert.EqualValues(t, 1, countRows(t, db, &entity.Transaction{}))
}

func TestLedger_ConvertInsufficientTokens(t *testing.T) {
	t.Parallel()

	db, reliance, _ := setupTestDB(t)
	uc := newUsecase(db)

	_, err := uc.ConvertToShares(context.Background(), testUser, reliance.ID, 1, 2500)
	require.ErrorIs(t, err, usecase.ErrInsufficientTokens)
	assert.Zero(t, countRows(t, db, &entity.Holding{}))
	assert.Zero(t, countRows(t, db, &entity.Transaction{}))
}

func TestLedger_CompanyChecks(t *testing.T) {
	t.Parallel()

	db, _, suspended := setupTestDB(t)
	uc := newUsecase(db)
	ctx := context.Background()

	_, err := uc.AddHolding(ctx, testUser, suspended.ID, 1, 10)
	assert.ErrorIs(t, err, usecase.ErrCompanyInactive)

	_, err = uc.Tokenize(ctx, testUser, 999, 1, 10)
	assert.ErrorIs(t, err, usecase.ErrCompanyNotFound)
}

func TestLedger_TokenizeAllDeletesHolding(t *testing.T) {
	t.Parallel()

	db, reliance, _ := setupTestDB(t)
	uc := newUsecase(db)
	ctx := context.Background()

	_, err := uc.AddHolding(ctx, testUser, reliance.ID, 5, 2400)
	require.NoError(t, err)

	res, err := uc.Tokenize(ctx, testUser, reliance.ID, 5, 2400)
	require.NoError(t, err)
	assert.Nil(t, res.Holding)
	assert.Zero(t, countRows(t, db, &entity.Holding{}))
}

func TestLedger_ConvertAllDeactivatesTokens(t *testing.T) {
	t.Parallel()

	db, reliance, _ := setupTestDB(t)
	uc := newUsecase(db)
	ctx := context.Background()

	_, err := uc.AddHolding(ctx, testUser, reliance.ID, 5, 2400)
	require.NoError(t, err)
	_, err = uc.Tokenize(ctx, testUser, reliance.ID, 5, 2400)
	require.NoError(t, err)

	res, err := uc.ConvertToShares(ctx, testUser, reliance.ID, 5, 2600)
	require.NoError(t, err)
	assert.False(t, res.TokenizedShare.IsActive)
	assert.EqualValues(t, 0, res.TokenizedShare.Quantity)

	active, err := uc.ListTokenizedShares(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, active)

	// 無効化済みの行が再利用され、平均単価もリセットされる
	res, err = uc.Tokenize(ctx, testUser, reliance.ID, 2, 2700)
	require.NoError(t, err)
	assert.True(t, res.TokenizedShare.IsActive)
	assert.EqualValues(t, 2, res.TokenizedShare.Quantity)
	assert.Equal(t, 2700.0, res.TokenizedShare.TokenizationPrice)
	assert.EqualValues(t, 1, countRows(t, db, &entity.TokenizedShare{}))
}

func TestLedgerTx_CreditHoldingAverages(t *testing.T) {
	t.Parallel()

	db, reliance, _ := setupTestDB(t)
	tx := NewLedgerTx(db)
	ctx := context.Background()

	h, err := tx.CreditHolding(ctx, testUser, reliance.ID, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, 100.0, h.AvgPrice)

	h, err = tx.CreditHolding(ctx, testUser, reliance.ID, 30, 200)
	require.NoError(t, err)
	assert.EqualValues(t, 40, h.Quantity)
	assert.Equal(t, 175.0, h.AvgPrice)
}

func TestLedgerGorm_ListTransactionsLimitAndOrder(t *testing.T) {
	t.Parallel()

	db, reliance, _ := setupTestDB(t)
	store := NewLedgerStore(db)
	ctx := context.Background()

	base := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&entity.Transaction{
			UserID: testUser, CompanyID: reliance.ID, TransactionType: entity.TransactionDeposit,
			Quantity: int64(i + 1), Price: 1, TotalAmount: float64(i + 1), CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	require.NoError(t, db.Create(&entity.Transaction{
		UserID: testUser + 1, CompanyID: reliance.ID, TransactionType: entity.TransactionDeposit, Quantity: 9, Price: 1, TotalAmount: 9,
	}).Error)

	got, err := store.ListTransactions(ctx, testUser, usecase.TransactionFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.EqualValues(t, 5, got[0].Quantity)
	assert.EqualValues(t, 4, got[1].Quantity)

	buy := entity.TransactionTradeBuy
	got, err = store.ListTransactions(ctx, testUser, usecase.TransactionFilter{Limit: 10, Type: &buy})
	require.NoError(t, err)
	assert.Empty(t, got)
}
