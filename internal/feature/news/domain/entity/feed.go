package entity

// Headline はニュースフィードの1記事です。
type Headline struct {
	Title     string
	Link      string
	Published string // フィード記載のままの発行日時文字列
}

// Feed は1つのニュースソースと、その最新記事の一覧です。
type Feed struct {
	Title     string
	URL       string
	Headlines []Headline
}
