// Package entity defines the domain entities for the auth feature.
package entity

import "time"

// User は登録済みの投資家です。
type User struct {
	// ID is the unique identifier for the user.
	ID uint `gorm:"primaryKey"`

	// Email is the user's email address used for authentication.
	// It must be unique across all users.
	Email string `gorm:"uniqueIndex;size:255;not null"`

	// Password is the bcrypt hash; plaintext is never stored.
	Password string `gorm:"size:255;not null"`

	FullName string `gorm:"size:100;not null"`

	// InvestorID はユーザーに見せる口座番号（INV + 16進8桁）。
	InvestorID string `gorm:"uniqueIndex;size:16;not null"`

	// KYCVerified はまだサーバー側で何も制限しない。表示はクライアントが行う。
	KYCVerified bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
