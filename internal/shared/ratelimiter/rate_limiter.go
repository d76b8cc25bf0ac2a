// Package ratelimiter は気配値プロバイダーへの呼び出しを間引きます。
package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limiter は次の呼び出しが許可されるまで呼び出し元をブロックします。
type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimiter は interval あたり最大 limit 回の呼び出しを許可します（固定ウィンドウ）。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int
	interval  time.Duration
	count     int
	lastReset time.Time
	now       func() time.Time
}

// NewRateLimiter は RateLimiter を生成します。limit が0以下なら制限しません。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// Wait は現在のウィンドウで1回分を確保します。上限に達していれば次のウィンドウまで待ちます。
// 待機中に ctx が終わると ctx.Err() を返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limit <= 0 {
		return nil
	}

	rl.mu.Lock()
	now := rl.now()
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}
	rl.count++
	if rl.count <= rl.limit {
		rl.mu.Unlock()
		return nil
	}

	sleep := rl.interval - now.Sub(rl.lastReset)
	// 上限に達した呼び出し元が次のウィンドウを開く
	rl.count = 1
	rl.lastReset = now.Add(sleep)
	rl.mu.Unlock()

	if sleep <= 0 {
		return nil
	}
	slog.Info("rate limit reached, waiting", "limit", rl.limit, "sleep", sleep)

	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
