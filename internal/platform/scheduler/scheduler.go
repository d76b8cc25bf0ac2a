// Package scheduler は株価更新や注文の約定などのバックグラウンドジョブを実行します。
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job は1回分の定期処理です。Stop でキャンセルされる context を受け取ります。
type Job func(ctx context.Context) error

// Scheduler は robfig/cron のラッパーです。同じジョブの実行が重なることはありません。
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	// timeout は1回の実行時間の上限。
	timeout time.Duration
}

// New は1回の実行が timeout で打ち切られるスケジューラーを生成します（0以下なら無制限）。
func New(timeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		)),
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// Register は job を spec（"@every 1m" や5フィールドの cron 式など）で登録します。
func (s *Scheduler) Register(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	slog.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	if err := job(ctx); err != nil {
		slog.Error("job failed", "job", name, "error", err, "elapsed", time.Since(start))
		return
	}
	slog.Debug("job finished", "job", name, "elapsed", time.Since(start))
}

// Start はスケジューラーを別の goroutine で動かします。
func (s *Scheduler) Start() { s.cron.Start() }

// Stop は実行中ジョブの context をキャンセルし、終了か ctx の終了まで待ちます。
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entries は登録済みのジョブ数を返します。
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }
