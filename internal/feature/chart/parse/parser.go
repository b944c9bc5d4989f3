// Package parse は生の行データを正規化された価格ポイントに変換します。
package parse

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ikcerog/lenderdash-dev/internal/feature/chart/domain/entity"
)

// dateLayouts は認識する日付フォーマットの試行順リストです。
// 先に一致したフォーマットが採用されるため、順序が挙動を決定します。
var dateLayouts = []string{
	"2006-01-02",          // ISO 8601
	"2006-01-02 15:04:05", // ISO 8601 + 時刻（ライブAPIの日中データ）
	"1/2/2006",            // MM/DD/YYYY（米国式、桁数は可変）
	"2-1-2006",            // DD-MM-YYYY
}

// RawRow はソース形式によらない1行分の生データです。
type RawRow struct {
	Date  string
	Close string
}

// Rows は生の行の並びを価格ポイントに変換します。
//
// 日付がどのフォーマットでも解釈できない行、および終値が非負の有限な数値として
// 解釈できない行は黙って破棄されます。ヘッダー行は日付の解釈失敗により
// 自然に読み飛ばされます。出力のソートは行いません（マージャーの責務）。
func Rows(rows []RawRow) []entity.PricePoint {
	points := make([]entity.PricePoint, 0, len(rows))
	for _, row := range rows {
		date, ok := parseDate(row.Date)
		if !ok {
			continue
		}
		c, ok := parseClose(row.Close)
		if !ok {
			continue
		}
		points = append(points, entity.PricePoint{Date: date, Close: c})
	}
	return points
}

// CSV は表形式のCSVテキストを価格ポイントに変換します。
// 先頭2列を (日付, 終値) として扱い、行単位の不正は破棄します。
func CSV(r io.Reader) ([]entity.PricePoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []RawRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// 行単位のエラーは致命的ではない
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, err
		}
		if len(record) < 2 {
			continue
		}
		rows = append(rows, RawRow{Date: record[0], Close: record[1]})
	}
	return Rows(rows), nil
}

// parseDate は登録済みフォーマットを順に試行し、最初に成功した結果を返します。
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return entity.Day(t), true
		}
	}
	return time.Time{}, false
}

// parseClose は終値を検証付きで数値化します。
// FREDのプレースホルダー "." のような非数値はここで弾かれます。
func parseClose(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}
