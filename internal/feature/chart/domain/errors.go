// Package domain はチャートフィーチャーのドメインロジックを定義します。
package domain

import "errors"

var (
	// ErrNoData はマージ後の系列が空でチャートを構成できない場合に返されます。
	ErrNoData = errors.New("no chart data available")
)
