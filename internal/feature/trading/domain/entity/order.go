// Package entity はトークン化株の指値注文を定義します。
package entity

import (
	"errors"
	"time"

	companyentity "github.com/amitgupta-mai/sebi-demo-sub000/internal/feature/company/domain/entity"
)

// ErrInvalidTransition は要求された状態へ注文を遷移できないときに返されます。
var ErrInvalidTransition = errors.New("order is no longer pending")

type OrderType string

const (
	OrderBuy  OrderType = "buy"
	OrderSell OrderType = "sell"
)

func (t OrderType) Valid() bool { return t == OrderBuy || t == OrderSell }

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusCancelled
}

// Transition は状態遷移を検証します。動けるのは pending の注文だけで、行き先は終端状態のみです。
func Transition(from, to OrderStatus) error {
	if from == StatusPending && (to == StatusCompleted || to == StatusCancelled) {
		return nil
	}
	return ErrInvalidTransition
}

// Order は指値注文です。買いは Price 以下、売りは Price 以上で約定します。
type Order struct {
	ID        uint                   `gorm:"primaryKey"`
	UserID    uint                   `gorm:"not null;index:idx_orders_user_status,priority:1"`
	CompanyID uint                   `gorm:"not null;index"`
	Company   *companyentity.Company `gorm:"foreignKey:CompanyID"`
	OrderType OrderType              `gorm:"size:4;not null"`
	Quantity  int64                  `gorm:"not null;check:chk_orders_quantity,quantity > 0"`
	Price     float64                `gorm:"not null;check:chk_orders_price,price > 0"`
	Status    OrderStatus            `gorm:"size:10;not null;default:pending;index:idx_orders_user_status,priority:2"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
