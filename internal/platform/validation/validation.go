// Package validation は gin のバリデーターに独自の binding タグを登録します。
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// TagNSESymbol は大文字小文字を問わず NSE の銘柄コードを検証します（A-Z、0-9、'&'、'-' の1〜20文字）。
const TagNSESymbol = "nse_symbol"

var nseSymbol = regexp.MustCompile(`^[A-Z0-9&-]{1,20}$`)

// ValidSymbol は s が書かれたままの形で正しい銘柄コードかを返します（大文字化しない）。
func ValidSymbol(s string) bool { return nseSymbol.MatchString(s) }

// IsNSESymbol は TagNSESymbol の validator.Func です。小文字も受け付けるので、
// 検索前の大文字化は呼び出し側で行います。
func IsNSESymbol(fl validator.FieldLevel) bool {
	return ValidSymbol(strings.ToUpper(fl.Field().String()))
}

// Register は独自タグを v に登録します。
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation(TagNSESymbol, IsNSESymbol); err != nil {
		return fmt.Errorf("register %s: %w", TagNSESymbol, err)
	}
	return nil
}

// RegisterGin は独自タグを gin の既定バリデーターに登録します。
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}
