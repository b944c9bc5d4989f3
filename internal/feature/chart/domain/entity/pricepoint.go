package entity

import "time"

// PricePoint は1営業日分の終値を表します。
// Date は常に UTC の真夜中に正規化された日付で、時刻成分を持ちません。
type PricePoint struct {
	Date  time.Time
	Close float64
}

// Day は Date で使用する日付の正規化を行います。
// パーサーとマージャーが同じ日付を同じキーとして扱えるようにします。
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
