// Package usecase は保有株とトークン化の台帳ロジックを実装します。
package usecase

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidPrice    = errors.New("price must be greater than zero")

	// ErrCompanyNotFound は存在しない企業 ID が指定されたときに返されます。
	ErrCompanyNotFound = errors.New("company not found")
	// ErrCompanyInactive は上場廃止・売買停止中の企業に対して返されます。
	ErrCompanyInactive = errors.New("company is not active")

	// ErrInsufficientShares は保有株数が引き落とし数量に足りないときに返されます。
	ErrInsufficientShares = errors.New("insufficient shares")
	// ErrInsufficientTokens はトークン残高が引き落とし数量に足りないときに返されます。
	ErrInsufficientTokens = errors.New("insufficient tokens")

	// ErrInvalidTransactionType は ?type= に未知の種別が渡されたときに返されます。
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrConcurrentUpdate は加算中にポジションが更新され続けたときに返されます。
	ErrConcurrentUpdate = errors.New("position changed concurrently, retry")
)
