package marketdata

import (
	"context"
	"fmt"
	"strconv"

	"github.com/finsightco/finsight/pkg/docprep"
)

// News returns all financial_news rows ordered by id.
func (s *Store) News(ctx context.Context) ([]NewsItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, company, sector, headline, sentiment, sentiment_score, market_impact, source
		FROM financial_news ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying news: %w", err)
	}
	defer rows.Close()

	var items []NewsItem
	for rows.Next() {
		var n NewsItem
		if err := rows.Scan(&n.ID, &n.Date, &n.Company, &n.Sector, &n.Headline,
			&n.Sentiment, &n.SentimentScore, &n.MarketImpact, &n.Source); err != nil {
			return nil, fmt.Errorf("scanning news: %w", err)
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// Companies returns the distinct company names present in the news table.
func (s *Store) Companies(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "company")
}

// Sectors returns the distinct sectors present in the news table.
func (s *Store) Sectors(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "sector")
}

func (s *Store) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT DISTINCT %s FROM financial_news ORDER BY %s", column, column))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", column, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", column, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// LatestPrices returns the most recent stock_prices row per company.
func (s *Store) LatestPrices(ctx context.Context) ([]StockPrice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.company, p.date, p.open_price, p.high_price, p.low_price, p.close_price, p.volume
		FROM stock_prices p
		JOIN (SELECT company, MAX(date) AS date FROM stock_prices GROUP BY company) latest
			ON p.company = latest.company AND p.date = latest.date
		ORDER BY p.company`)
	if err != nil {
		return nil, fmt.Errorf("querying prices: %w", err)
	}
	defer rows.Close()

	var prices []StockPrice
	for rows.Next() {
		var p StockPrice
		if err := rows.Scan(&p.Company, &p.Date, &p.OpenPrice, &p.HighPrice,
			&p.LowPrice, &p.ClosePrice, &p.Volume); err != nil {
			return nil, fmt.Errorf("scanning prices: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// NewsDocuments converts the news table into retrieval documents, one per
// headline, carrying the metadata the context assembler renders.
func (s *Store) NewsDocuments(ctx context.Context) ([]docprep.Document, error) {
	items, err := s.News(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]docprep.Document, 0, len(items))
	for i, n := range items {
		docs = append(docs, docprep.Document{
			Content: n.Headline,
			Metadata: map[string]string{
				"source_row":      strconv.Itoa(i),
				"date":            n.Date,
				"company":         n.Company,
				"sector":          n.Sector,
				"sentiment":       n.Sentiment,
				"sentiment_score": strconv.FormatFloat(n.SentimentScore, 'f', 3, 64),
			},
		})
	}
	return docs, nil
}

// StockSummaryDocuments renders one summary document per company from its
// latest price row.
func (s *Store) StockSummaryDocuments(ctx context.Context) ([]docprep.Document, error) {
	prices, err := s.LatestPrices(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]docprep.Document, 0, len(prices))
	for i, p := range prices {
		content := fmt.Sprintf(
			"%s stock closed at %.2f on %s (open %.2f, high %.2f, low %.2f) with volume %d.",
			p.Company, p.ClosePrice, p.Date, p.OpenPrice, p.HighPrice, p.LowPrice, p.Volume)
		docs = append(docs, docprep.Document{
			Content: content,
			Metadata: map[string]string{
				"source_row": strconv.Itoa(i),
				"date":       p.Date,
				"company":    p.Company,
			},
		})
	}
	return docs, nil
}
