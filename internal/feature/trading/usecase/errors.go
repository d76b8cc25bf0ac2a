// Package usecase は指値注文の受付と約定処理を実装します。
package usecase

import "errors"

var (
	ErrInvalidQuantity  = errors.New("quantity must be greater than zero")
	ErrInvalidPrice     = errors.New("price must be greater than zero")
	ErrInvalidOrderType = errors.New("order type must be buy or sell")
	ErrInvalidStatus    = errors.New("invalid order status")

	// ErrOrderNotFound は未知の ID や他ユーザーの注文に対して返されます。
	ErrOrderNotFound = errors.New("order not found")

	// ErrInsufficientTokens は売り数量が未約定の売り注文で拘束済みの分を除いた残高を超えるときに返されます。
	ErrInsufficientTokens = errors.New("insufficient tokens")
	// ErrInsufficientBalance は買い注文の必要額が使える残高を超えるときに返されます。
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrOrderTooSmall は売却代金が取引手数料に満たない売り注文に対して返されます。
	ErrOrderTooSmall = errors.New("order value must exceed the trade fee")
)
