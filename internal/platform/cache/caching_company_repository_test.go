package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/usecase"
)

// mockCompanyRepository はテスト用のCompanyRepositoryモック実装です。
type mockCompanyRepository struct {
	listActiveFn   func(ctx context.Context) ([]entity.Company, error)
	findByIDFn     func(ctx context.Context, id uint) (*entity.Company, error)
	findBySymbolFn func(ctx context.Context, symbol string) (*entity.Company, error)
	updatePriceFn  func(ctx context.Context, id uint, price float64) error

	calls int
}

func (m *mockCompanyRepository) ListActive(ctx context.Context) ([]entity.Company, error) {
	m.calls++
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return nil, nil
}

func (m *mockCompanyRepository) FindByID(ctx context.Context, id uint) (*entity.Company, error) {
	m.calls++
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, usecase.ErrCompanyNotFound
}

func (m *mockCompanyRepository) FindBySymbol(ctx context.Context, symbol string) (*entity.Company, error) {
	m.calls++
	if m.findBySymbolFn != nil {
		return m.findBySymbolFn(ctx, symbol)
	}
	return nil, usecase.ErrCompanyNotFound
}

func (m *mockCompanyRepository) UpdatePrice(ctx context.Context, id uint, price float64) error {
	if m.updatePriceFn != nil {
		return m.updatePriceFn(ctx, id, price)
	}
	return nil
}

func (m *mockCompanyRepository) Upsert(context.Context, []entity.Company) error { return nil }

func fixedTTL() time.Duration { return time.Hour }

func setupMiniredis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// TestNewCachingCompanyRepository_Defaults はデフォルトのnamespaceとTTLを検証します。
func TestNewCachingCompanyRepository_Defaults(t *testing.T) {
	t.Parallel()

	repo := NewCachingCompanyRepository(nil, nil, &mockCompanyRepository{}, "")

	assert.Equal(t, "companies", repo.namespace)
	assert.NotNil(t, repo.ttl)
	assert.Positive(t, repo.ttl())
}

// TestCachingCompanyRepository_NilRedis はRedis未設定時に常に内部リポジトリへ委譲することを検証します。
func TestCachingCompanyRepository_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockCompanyRepository{
		listActiveFn: func(context.Context) ([]entity.Company, error) {
			return []entity.Company{{ID: 1, Symbol: "TCS"}}, nil
		},
	}
	repo := NewCachingCompanyRepository(nil, fixedTTL, inner, "")

	for i := 0; i < 3; i++ {
		got, err := repo.ListActive(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 3, inner.calls)
	assert.NoError(t, repo.UpdatePrice(context.Background(), 1, 10))
}

// TestCachingCompanyRepository_CachesReads は2回目以降の読み取りがキャッシュから返されることを検証します。
func TestCachingCompanyRepository_CachesReads(t *testing.T) {
	t.Parallel()

	client, mr := setupMiniredis(t)
	inner := &mockCompanyRepository{
		findByIDFn: func(_ context.Context, id uint) (*entity.Company, error) {
			return &entity.Company{ID: id, Symbol: "INFY", CurrentPrice: 1450}, nil
		},
	}
	repo := NewCachingCompanyRepository(client, fixedTTL, inner, "companies")

	first, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	second, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.True(t, mr.Exists("companies:id:3"))
	assert.Equal(t, time.Hour, mr.TTL("companies:id:3"))
}

// TestCachingCompanyRepository_ErrorsNotCached はエラーがキャッシュされないことを検証します。
func TestCachingCompanyRepository_ErrorsNotCached(t *testing.T) {
	t.Parallel()

	client, mr := setupMiniredis(t)
	repo := NewCachingCompanyRepository(client, fixedTTL, &mockCompanyRepository{}, "companies")

	_, err := repo.FindBySymbol(context.Background(), "NOPE")

	assert.ErrorIs(t, err, usecase.ErrCompanyNotFound)
	assert.Empty(t, mr.Keys())
}

// TestCachingCompanyRepository_UpdatePriceInvalidates は価格更新でnamespace全体が削除されることを検証します。
func TestCachingCompanyRepository_UpdatePriceInvalidates(t *testing.T) {
	t.Parallel()

	client, mr := setupMiniredis(t)
	price := 1450.0
	inner := &mockCompanyRepository{
		listActiveFn: func(context.Context) ([]entity.Company, error) {
			return []entity.Company{{ID: 3, Symbol: "INFY", CurrentPrice: price}}, nil
		},
		updatePriceFn: func(_ context.Context, _ uint, p float64) error {
			price = p
			return nil
		},
	}
	repo := NewCachingCompanyRepository(client, fixedTTL, inner, "companies")
	require.NoError(t, mr.Set("other:key", "keep"))

	_, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.NoError(t, repo.UpdatePrice(context.Background(), 3, 1500))

	assert.False(t, mr.Exists("companies:active"))
	assert.True(t, mr.Exists("other:key"))

	got, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1500.0, got[0].CurrentPrice)
}

// TestCachingCompanyRepository_UpdatePriceError は書き込み失敗時にキャッシュを触らないことを検証します。
func TestCachingCompanyRepository_UpdatePriceError(t *testing.T) {
	t.Parallel()

	client, mock := redismock.NewClientMock()
	inner := &mockCompanyRepository{
		updatePriceFn: func(context.Context, uint, float64) error { return errors.New("db down") },
	}
	repo := NewCachingCompanyRepository(client, fixedTTL, inner, "companies")

	err := repo.UpdatePrice(context.Background(), 1, 10)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestCachingCompanyRepository_CorruptedEntry は壊れたキャッシュを削除して再取得することを検証します。
func TestCachingCompanyRepository_CorruptedEntry(t *testing.T) {
	t.Parallel()

	client, mock := redismock.NewClientMock()
	company := &entity.Company{ID: 9, Symbol: "HDFCBANK", CurrentPrice: 1650}
	inner := &mockCompanyRepository{
		findBySymbolFn: func(context.Context, string) (*entity.Company, error) { return company, nil },
	}
	repo := NewCachingCompanyRepository(client, fixedTTL, inner, "companies")
	encoded, err := json.Marshal(company)
	require.NoError(t, err)

	mock.ExpectGet("companies:symbol:HDFCBANK").SetVal("{not json")
	mock.ExpectDel("companies:symbol:HDFCBANK").SetVal(1)
	mock.ExpectSet("companies:symbol:HDFCBANK", encoded, time.Hour).SetVal("OK")

	got, err := repo.FindBySymbol(context.Background(), "HDFCBANK")

	require.NoError(t, err)
	assert.Equal(t, company, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSafe(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "M&M_X_Y_", safe("M&M X:Y*"))
}
