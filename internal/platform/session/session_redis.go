// Package session はリフレッシュセッションを Redis に置く実装。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/domain/entity"
	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/usecase"
)

// DefaultPrefix はキーの名前空間。
const DefaultPrefix = "session"

// SessionRedis はセッション本体を JSON 文字列で、ユーザーごとの索引を
// 作成時刻をスコアにした ZSET で持つ。本体はセッションと同じ TTL で消える。
type SessionRedis struct {
	client redis.UniversalClient
	prefix string
}

var _ usecase.SessionRepository = (*SessionRedis)(nil)

// record は Redis に保存する形。entity とは切り離してキー名を固定する。
type record struct {
	ID         string     `json:"id"`
	UserID     uint       `json:"user_id"`
	InvestorID string     `json:"investor_id,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	IPAddress  string     `json:"ip,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

func toRecord(s *entity.Session) record {
	return record{
		ID:         s.ID,
		UserID:     s.UserID,
		InvestorID: s.InvestorID,
		UserAgent:  s.UserAgent,
		IPAddress:  s.IPAddress,
		CreatedAt:  s.CreatedAt,
		ExpiresAt:  s.ExpiresAt,
		RevokedAt:  s.RevokedAt,
	}
}

func (r record) toEntity() *entity.Session {
	return &entity.Session{
		ID:         r.ID,
		UserID:     r.UserID,
		InvestorID: r.InvestorID,
		UserAgent:  r.UserAgent,
		IPAddress:  r.IPAddress,
		CreatedAt:  r.CreatedAt,
		ExpiresAt:  r.ExpiresAt,
		RevokedAt:  r.RevokedAt,
	}
}

func NewSessionRedis(client redis.UniversalClient, prefix string) *SessionRedis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &SessionRedis{
		client: client,
		prefix: prefix,
	}
}

func (r *SessionRedis) sessionKey(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

func (r *SessionRedis) userSessionsKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", r.prefix, userID)
}

// Create は本体の保存と索引への追加を MULTI でまとめて行う。
func (r *SessionRedis) Create(ctx context.Context, session *entity.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}

	data, err := json.Marshal(toRecord(session))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	userKey := r.userSessionsKey(session.UserID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.sessionKey(session.ID), data, ttl)
		pipe.ZAdd(ctx, userKey, redis.Z{Score: float64(session.CreatedAt.UnixMilli()), Member: session.ID})
		// TTL は全セッション共通なので、最後に作ったものが索引の寿命になる
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	return err
}

func (r *SessionRedis) FindByID(ctx context.Context, id string) (*entity.Session, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return rec.toEntity(), nil
}

// FindByUserID は ZSET の順序（作成順）のまま有効なセッションを返す。
// 本体が TTL で消えた索引エントリはここで掃除する。
func (r *SessionRedis) FindByUserID(ctx context.Context, userID uint) ([]*entity.Session, error) {
	userKey := r.userSessionsKey(userID)
	ids, err := r.client.ZRange(ctx, userKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var sessions []*entity.Session
	var stale []any
	for _, id := range ids {
		session, err := r.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, usecase.ErrSessionNotFound) {
				stale = append(stale, id)
				continue
			}
			return nil, err
		}
		if session.IsValid() {
			sessions = append(sessions, session)
		}
	}
	if len(stale) > 0 {
		r.client.ZRem(ctx, userKey, stale...)
	}
	return sessions, nil
}

// Revoke は残り TTL を保ったまま RevokedAt を立てる。期限までは再利用を検知できる。
func (r *SessionRedis) Revoke(ctx context.Context, id string) error {
	session, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	now := time.Now()
	session.RevokedAt = &now

	data, err := json.Marshal(toRecord(session))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.Set(ctx, r.sessionKey(id), data, redis.KeepTTL).Err()
}

func (r *SessionRedis) RevokeAllByUserID(ctx context.Context, userID uint) error {
	ids, err := r.client.ZRange(ctx, r.userSessionsKey(userID), 0, -1).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.Revoke(ctx, id); err != nil && !errors.Is(err, usecase.ErrSessionNotFound) {
			return err
		}
	}
	return nil
}

// DeleteExpired は何もしない。期限切れは Redis が消す。
func (r *SessionRedis) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

func (r *SessionRedis) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	sessions, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(sessions)), nil
}

func (r *SessionRedis) DeleteOldestByUserID(ctx context.Context, userID uint) error {
	sessions, err := r.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		return nil
	}

	oldest := sessions[0]
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.sessionKey(oldest.ID))
		pipe.ZRem(ctx, r.userSessionsKey(userID), oldest.ID)
		return nil
	})
	return err
}
