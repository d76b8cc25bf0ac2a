// Package usecase はウォレットの入出金と約定時の入出金エントリを実装します。
package usecase

import "errors"

var (
	// ErrInvalidAmount は (0, MaxAmount] の範囲外、または1パイサ未満の金額に対して返されます。
	ErrInvalidAmount = errors.New("amount must be between ₹0.01 and ₹10,00,000")
	// ErrInsufficientBalance は引き落としが残高を超えるときに返されます。何も書き込まれません。
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrConcurrentUpdate    = errors.New("wallet changed concurrently, retry")
)
