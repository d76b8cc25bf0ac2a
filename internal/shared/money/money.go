// Package money はルピー金額と株価の厳密な十進演算を提供します。
//
// 金額は float64 で保存しますが、台帳に書く値の計算はすべて shopspring/decimal を通し、
// 手数料や合計に二進丸め誤差が溜まらないようにしています。
package money

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const (
	// Currency はこのサービスが扱う全金額の ISO コードです。
	Currency = money.INR

	// amountPlaces は金額の精度（パイサ）。
	amountPlaces = 2
	// pricePlaces は平均単価とトークン化単価で保持する精度。
	pricePlaces = 4
)

// Valuation はポジションの時価評価です。
type Valuation struct {
	Invested          float64
	Current           float64
	ProfitLoss        float64
	ProfitLossPercent float64
}

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// Round2 は金額をパイサ単位に丸めます。
func Round2(v float64) float64 {
	return d(v).Round(amountPlaces).InexactFloat64()
}

// Mul は price × qty をパイサ単位に丸めて返します。
func Mul(price float64, qty int64) float64 {
	return d(price).Mul(decimal.NewFromInt(qty)).Round(amountPlaces).InexactFloat64()
}

// Total は price × qty + fee、つまり出金側の台帳エントリで請求する額を返します。
func Total(price float64, qty int64, fee float64) float64 {
	return d(price).Mul(decimal.NewFromInt(qty)).Add(d(fee)).Round(amountPlaces).InexactFloat64()
}

// Net は price × qty − fee、つまり売却で入金される額を返します。
func Net(price float64, qty int64, fee float64) float64 {
	return d(price).Mul(decimal.NewFromInt(qty)).Sub(d(fee)).Round(amountPlaces).InexactFloat64()
}

// Add は a + b をパイサ単位に丸めて返します。
func Add(a, b float64) float64 {
	return d(a).Add(d(b)).Round(amountPlaces).InexactFloat64()
}

// Sub は a − b をパイサ単位に丸めて返します。
func Sub(a, b float64) float64 {
	return d(a).Sub(d(b)).Round(amountPlaces).InexactFloat64()
}

// WeightedAverage は ((oldQty·oldAvg)+(addQty·price)) / (oldQty+addQty) を返します。
// 合計数量がゼロなら price を返します。
func WeightedAverage(oldQty int64, oldAvg float64, addQty int64, price float64) float64 {
	total := oldQty + addQty
	if total <= 0 {
		return price
	}
	num := decimal.NewFromInt(oldQty).Mul(d(oldAvg)).Add(decimal.NewFromInt(addQty).Mul(d(price)))
	return num.Div(decimal.NewFromInt(total)).Round(pricePlaces).InexactFloat64()
}

// Valuate は cost で買った qty 単位を price で評価します。
func Valuate(qty int64, cost, price float64) Valuation {
	q := decimal.NewFromInt(qty)
	invested := q.Mul(d(cost))
	current := q.Mul(d(price))
	pl := current.Sub(invested)

	pct := decimal.Zero
	if !invested.IsZero() {
		pct = pl.Div(invested).Mul(decimal.NewFromInt(100))
	}
	return Valuation{
		Invested:          invested.Round(amountPlaces).InexactFloat64(),
		Current:           current.Round(amountPlaces).InexactFloat64(),
		ProfitLoss:        pl.Round(amountPlaces).InexactFloat64(),
		ProfitLossPercent: pct.Round(amountPlaces).InexactFloat64(),
	}
}

// Percent は part/whole × 100 を小数2桁に丸めて返します。whole がゼロなら0です。
func Percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return d(part).Div(d(whole)).Mul(decimal.NewFromInt(100)).Round(amountPlaces).InexactFloat64()
}

// FormatINR は投資家向けの表示形式（ラーク・クロール区切り）で金額を返します。例: "₹1,00,050.00"
func FormatINR(amount float64) string {
	m := money.New(d(amount).Shift(amountPlaces).Round(0).IntPart(), Currency)
	abs := m.Absolute().Amount()

	var b strings.Builder
	if m.IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(m.Currency().Grapheme)
	b.WriteString(groupIndian(strconv.FormatInt(abs/100, 10)))
	fmt.Fprintf(&b, ".%02d", abs%100)
	return b.String()
}

// groupIndian は下3桁、以降2桁ごとにカンマを入れます。
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}
