package usecase

import (
	"context"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/domain/entity"
)

// SessionRepository はリフレッシュセッションの保存先。
// DB 版と Redis 版があり、どちらを使うかは起動時に決まる。
type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error

	// FindByID は見つからなければ ErrSessionNotFound を返す。失効済みでも返す（再利用検知に使う）。
	FindByID(ctx context.Context, id string) (*entity.Session, error)

	// FindByUserID は有効なセッションだけを古い順に返す。
	FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error)

	Revoke(ctx context.Context, id string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error

	// DeleteExpired は期限切れの行を消して件数を返す。定期ジョブから呼ばれる。
	DeleteExpired(ctx context.Context) (int64, error)

	CountByUserID(ctx context.Context, userID uint) (int64, error)

	// DeleteOldestByUserID は同時ログイン上限を超えたときに一番古いものを追い出す。
	DeleteOldestByUserID(ctx context.Context, userID uint) error
}
