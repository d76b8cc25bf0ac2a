// Package entity は現金ウォレットと追記専用の入出金履歴を定義します。
package entity

import "time"

// Wallet はユーザーの INR 現金残高です。ユーザーごとにちょうど1行です。
type Wallet struct {
	ID        uint    `gorm:"primaryKey"`
	UserID    uint    `gorm:"not null;uniqueIndex"`
	Balance   float64 `gorm:"not null;default:0;check:chk_wallets_balance,balance >= 0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TransactionType はウォレット履歴の種別です。
type TransactionType string

const (
	TransactionAdd         TransactionType = "add"
	TransactionWithdraw    TransactionType = "withdraw"
	TransactionTradeDebit  TransactionType = "trade_debit"
	TransactionTradeCredit TransactionType = "trade_credit"
)

// Transaction は追記専用のウォレット履歴です。BalanceAfter は適用直後の残高です。
type Transaction struct {
	ID           uint            `gorm:"primaryKey"`
	WalletID     uint            `gorm:"not null;index"`
	UserID       uint            `gorm:"not null;index:idx_wallet_transactions_user_created,priority:1"`
	Type         TransactionType `gorm:"size:20;not null"`
	Amount       float64         `gorm:"not null"`
	BalanceAfter float64         `gorm:"not null"`
	Description  string          `gorm:"size:255"`
	OrderID      *uint           `gorm:"index"`
	CreatedAt    time.Time       `gorm:"index:idx_wallet_transactions_user_created,priority:2"`
}

// TableName は株式台帳とテーブルを分けるために指定します。
func (Transaction) TableName() string { return "wallet_transactions" }
