package entity

import "time"

// Session は投資家のログインセッション（リフレッシュトークン1本分）。
// ID がそのままリフレッシュトークンになる。
type Session struct {
	ID         string // 64 桁の hex
	UserID     uint
	InvestorID string // 発行時点の投資家番号。失効ログで口座を特定するために保持する
	UserAgent  string
	IPAddress  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	RevokedAt  *time.Time // nil なら有効
}

// ExpiredAt は now 時点で有効期限を過ぎているかを返す。
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) IsExpired() bool {
	return s.ExpiredAt(time.Now())
}

func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

// IsValid は失効も期限切れもしていないセッションで true。
func (s *Session) IsValid() bool {
	return !s.IsExpired() && !s.IsRevoked()
}
