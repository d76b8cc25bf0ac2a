// Package entity はポジションと取引台帳のドメインモデルを定義します。
package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	companyentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
)

// Holding は現物（demat）株の保有です。
// (user, company) ごとに最大1行で、株数ゼロの行は存在しません。
type Holding struct {
	ID        uint                   `gorm:"primaryKey"`
	UserID    uint                   `gorm:"not null;uniqueIndex:idx_holdings_user_company"`
	CompanyID uint                   `gorm:"not null;uniqueIndex:idx_holdings_user_company"`
	Company   *companyentity.Company `gorm:"foreignKey:CompanyID"`
	Quantity  int64                  `gorm:"not null;check:chk_holdings_quantity,quantity >= 0"`
	// AvgPrice は1株あたりの加重平均取得単価。
	AvgPrice  float64 `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenizedShare はトークンのポジションです。ゼロになった行は削除せず無効化し、
// 次の加算で一意キー (user, company) を再利用します。
type TokenizedShare struct {
	ID                uint                   `gorm:"primaryKey"`
	UserID            uint                   `gorm:"not null;uniqueIndex:idx_tokens_user_company"`
	CompanyID         uint                   `gorm:"not null;uniqueIndex:idx_tokens_user_company"`
	Company           *companyentity.Company `gorm:"foreignKey:CompanyID"`
	Quantity          int64                  `gorm:"not null;check:chk_tokens_quantity,quantity >= 0"`
	TokenizationPrice float64                `gorm:"not null"`
	IsActive          bool                   `gorm:"not null;default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TransactionType は台帳エントリの種別です。
type TransactionType string

const (
	TransactionTokenize   TransactionType = "tokenize"
	TransactionDetokenize TransactionType = "detokenize"
	TransactionTradeBuy   TransactionType = "trade_buy"
	TransactionTradeSell  TransactionType = "trade_sell"
	// TransactionDeposit は外部から入庫された demat 株。
	TransactionDeposit TransactionType = "deposit"
)

// Valid は既知の種別かどうかを返します。
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTokenize, TransactionDetokenize, TransactionTradeBuy, TransactionTradeSell, TransactionDeposit:
		return true
	}
	return false
}

// Transaction は追記専用の台帳エントリです。行が更新されることはありません。
type Transaction struct {
	ID              uint                   `gorm:"primaryKey"`
	UserID          uint                   `gorm:"not null;index:idx_transactions_user_created,priority:1"`
	CompanyID       uint                   `gorm:"not null"`
	Company         *companyentity.Company `gorm:"foreignKey:CompanyID"`
	TransactionType TransactionType        `gorm:"size:20;not null;index"`
	Quantity        int64                  `gorm:"not null"`
	Price           float64                `gorm:"not null"`
	Fees            float64                `gorm:"not null;default:0"`
	TotalAmount     float64                `gorm:"not null"`
	OrderID         *uint                  `gorm:"index"`
	// Reference は明細に表示できる公開識別子。
	Reference string    `gorm:"size:36;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"index:idx_transactions_user_created,priority:2"`
}

// BeforeCreate は公開用の Reference を採番します。
func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.Reference == "" {
		t.Reference = uuid.NewString()
	}
	return nil
}
