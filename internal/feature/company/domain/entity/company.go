// Package entity は company フィーチャーのドメインモデルを定義します。
package entity

import "time"

// Company は NSE 上場の発行体で、その株式が売買やトークン化の対象になります。
// CurrentPrice は INR 建ての最新価格で、すべての評価額の基準になります。
type Company struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Symbol       string  `gorm:"size:20;not null;uniqueIndex" json:"symbol"`
	Name         string  `gorm:"size:255;not null" json:"name"`
	Sector       string  `gorm:"size:100;not null;default:''" json:"sector"`
	CurrentPrice float64 `gorm:"not null;default:0" json:"currentPrice"`
	// MarketCap の単位はクロール（千万ルピー）。
	MarketCap float64   `gorm:"not null;default:0" json:"marketCap"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
