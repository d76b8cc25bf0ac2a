package adapters

import (
	"time"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/auth/domain/entity"
)

// SessionModel は sessions テーブルの行。
type SessionModel struct {
	ID         string     `gorm:"primaryKey;size:64"`
	UserID     uint       `gorm:"index;not null"`
	InvestorID string     `gorm:"size:16;index"`
	UserAgent  string     `gorm:"size:512"`
	IPAddress  string     `gorm:"size:45"`
	CreatedAt  time.Time  `gorm:"not null"`
	ExpiresAt  time.Time  `gorm:"index;not null"`
	RevokedAt  *time.Time `gorm:"index"`
}

func (SessionModel) TableName() string {
	return "sessions"
}

func (m *SessionModel) ToEntity() *entity.Session {
	return &entity.Session{
		ID:         m.ID,
		UserID:     m.UserID,
		InvestorID: m.InvestorID,
		UserAgent:  m.UserAgent,
		IPAddress:  m.IPAddress,
		CreatedAt:  m.CreatedAt,
		ExpiresAt:  m.ExpiresAt,
		RevokedAt:  m.RevokedAt,
	}
}

func SessionModelFromEntity(s *entity.Session) *SessionModel {
	return &SessionModel{
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
