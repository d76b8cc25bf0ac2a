// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/usecase"
)

// CachingCompanyRepository は CompanyRepository に Redis キャッシュを被せるデコレーターです。
// 読み取りは次の取引開始までキャッシュし、書き込みがあれば名前空間ごと破棄するので
// 価格更新は次の読み取りから反映されます。
type CachingCompanyRepository struct {
	inner     usecase.CompanyRepository
	rdb       *redis.Client
	ttl       func() time.Duration
	namespace string
}

var _ usecase.CompanyRepository = (*CachingCompanyRepository)(nil)

// NewCachingCompanyRepository は inner をラップします。rdb が nil ならキャッシュしません。
// ttl が nil なら TimeUntilNextMarketOpen を、namespace が空なら "companies" を使います。
func NewCachingCompanyRepository(rdb *redis.Client, ttl func() time.Duration, inner usecase.CompanyRepository, namespace string) *CachingCompanyRepository {
	if ttl == nil {
		ttl = TimeUntilNextMarketOpen
	}
	if namespace == "" {
		namespace = "companies"
	}
	return &CachingCompanyRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

func (c *CachingCompanyRepository) ListActive(ctx context.Context) ([]entity.Company, error) {
	var out []entity.Company
	err := c.cached(ctx, c.namespace+":active", &out, func() (interface{}, error) {
		list, err := c.inner.ListActive(ctx)
		out = list
		return list, err
	})
	return out, err
}

func (c *CachingCompanyRepository) FindByID(ctx context.Context, id uint) (*entity.Company, error) {
	var out *entity.Company
	err := c.cached(ctx, fmt.Sprintf("%s:id:%d", c.namespace, id), &out, func() (interface{}, error) {
		company, err := c.inner.FindByID(ctx, id)
		out = company
		return company, err
	})
	return out, err
}

func (c *CachingCompanyRepository) FindBySymbol(ctx context.Context, symbol string) (*entity.Company, error) {
	var out *entity.Company
	err := c.cached(ctx, fmt.Sprintf("%s:symbol:%s", c.namespace, safe(symbol)), &out, func() (interface{}, error) {
		company, err := c.inner.FindBySymbol(ctx, symbol)
		out = company
		return company, err
	})
	return out, err
}

// UpdatePrice は書き込み後にキャッシュを無効化します。
func (c *CachingCompanyRepository) UpdatePrice(ctx context.Context, id uint, price float64) error {
	if err := c.inner.UpdatePrice(ctx, id, price); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachingCompanyRepository) Upsert(ctx context.Context, companies []entity.Company) error {
	if err := c.inner.Upsert(ctx, companies); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// cached は key の値を dst に読み込みます。なければ load を呼んで結果を保存します。
// load のエラーはそのまま返し、キャッシュしません。
func (c *CachingCompanyRepository) cached(ctx context.Context, key string, dst interface{}, load func() (interface{}, error)) error {
	// Redis 未設定ならキャッシュを経由しない
	if c.rdb == nil {
		_, err := load()
		return err
	}

	// 1) キャッシュを確認
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		if err := json.Unmarshal(b, dst); err == nil {
			return nil
		}
		// 壊れたキャッシュは削除
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) DB にフォールバック
	v, err := load()
	if err != nil {
		return err
	}

	// 3) キャッシュに保存（失敗しても無視）
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl()).Err()
	}
	return nil
}

func (c *CachingCompanyRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	if err := c.deleteByPattern(ctx, c.namespace+":*"); err != nil {
		slog.Warn("company cache invalidation failed", "namespace", c.namespace, "error", err)
	}
}

// deleteByPattern は SCAN でパターンに一致するキーをすべて削除します。
func (c *CachingCompanyRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}
