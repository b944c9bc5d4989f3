package domain

import (
	"sort"
	"time"

	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/domain/entity"
)

const (
	// MergeWindowDays はマージ後の系列が保持する最大日数です。
	// 最新日付から数えてこれより古いポイントは破棄されます。
	MergeWindowDays = 180
	// DisplayWindowDays は描画用に返す系列の最大日数です。
	DisplayWindowDays = 90
)

// Merge は履歴系列とライブ系列を1本の系列に統合します。
//
// ルール:
//   - 同じ日付が両方に存在する場合はライブ側の値が優先されます。
//   - 結果は日付の昇順にソートされ、重複日付を含みません。
//   - 最新日付から MergeWindowDays より古いポイントは破棄されます。
//
// どちらかが空の場合は残りの系列のみから構成されます。両方空なら空を返します。
func Merge(historical, live []entity.PricePoint) []entity.PricePoint {
	byDate := make(map[time.Time]float64, len(historical)+len(live))
	for _, p := range historical {
		byDate[p.Date] = p.Close
	}
	// ライブ側で上書きする
	for _, p := range live {
		byDate[p.Date] = p.Close
	}
	if len(byDate) == 0 {
		return []entity.PricePoint{}
	}

	merged := make([]entity.PricePoint, 0, len(byDate))
	for d, c := range byDate {
		merged = append(merged, entity.PricePoint{Date: d, Close: c})
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })

	// 最新日付を基準に古いポイントを切り落とす
	cutoff := merged[len(merged)-1].Date.AddDate(0, 0, -MergeWindowDays)
	i := sort.Search(len(merged), func(i int) bool { return !merged[i].Date.Before(cutoff) })
	return merged[i:]
}

// ForDisplay はマージ済み系列から描画用の末尾部分を切り出します。
// 系列自身の最新日付から DisplayWindowDays 以内のポイントのみを連続した
// サフィックスとして返します。系列がそれより短い場合はそのまま返します。
func ForDisplay(series []entity.PricePoint) []entity.PricePoint {
	if len(series) == 0 {
		return series
	}
	cutoff := series[len(series)-1].Date.AddDate(0, 0, -DisplayWindowDays)
	i := sort.Search(len(series), func(i int) bool { return !series[i].Date.Before(cutoff) })
	return series[i:]
}
