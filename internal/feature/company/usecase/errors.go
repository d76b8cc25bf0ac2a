// Package usecase は企業マスタの検索を実装します。
package usecase

import "errors"

var (
	// ErrCompanyNotFound は ID や銘柄コードに一致する企業がないときに返されます。
	ErrCompanyNotFound = errors.New("company not found")

	// ErrInvalidSymbol は NSE の銘柄コードとしてありえない文字列に対して返されます。
	ErrInvalidSymbol = errors.New("invalid symbol")
)
