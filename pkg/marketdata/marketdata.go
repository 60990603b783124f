// Package marketdata owns the tabular financial store: news headlines,
// stock prices, and economic indicators in SQLite, with synthetic seeding
// and a read-only query surface for the agent's database tool.
package marketdata

// NewsItem is one row of the financial_news table.
type NewsItem struct {
	ID             int
	Date           string
	Company        string
	Sector         string
	Headline       string
	Sentiment      string
	SentimentScore float64
	MarketImpact   string
	Source         string
}

// StockPrice is one row of the stock_prices table.
type StockPrice struct {
	Company    string
	Date       string
	OpenPrice  float64
	HighPrice  float64
	LowPrice   float64
	ClosePrice float64
	Volume     int64
}

// EconomicIndicator is one row of the economic_indicators table.
type EconomicIndicator struct {
	Date      string
	Indicator string
	Value     float64
	Period    string
}
