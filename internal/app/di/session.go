package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/adapters"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/usecase"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/session"
)

// NewSessionRepository は SessionRepository の実装を生成します。
// Redis が使えれば Redis 版を返し、
// 使えなければ DB 版にフォールバックします。
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, session.DefaultPrefix)
	}
	return authadapters.NewSessionGorm(db)
}
