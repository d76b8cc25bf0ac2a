package cache

import (
	"time"
)

// NSE の取引開始は IST 09:15。
const (
	marketOpenHour   = 9
	marketOpenMinute = 15
)

var ist = mustLoadIST()

func mustLoadIST() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// IST には夏時間がないので固定ゾーンで正確。
		return time.FixedZone("IST", 5*3600+30*60)
	}
	return loc
}

// TimeUntilNextMarketOpen は次のNSE取引開始（09:15 IST）までの期間を返します。
func TimeUntilNextMarketOpen() time.Duration {
	return timeUntilMarketOpen(time.Now())
}

func timeUntilMarketOpen(from time.Time) time.Duration {
	now := from.In(ist)
	next := time.Date(now.Year(), now.Month(), now.Day(), marketOpenHour, marketOpenMinute, 0, 0, ist)

	// 今日の取引開始が既に過ぎている場合は翌日
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
