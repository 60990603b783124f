package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var newsHeader = []string{
	"id", "date", "company", "sector", "headline",
	"sentiment", "sentiment_score", "market_impact", "source",
}

// ExportNewsCSV writes the financial_news table as CSV.
func (s *Store) ExportNewsCSV(ctx context.Context, w io.Writer) error {
	items, err := s.News(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(newsHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, n := range items {
		record := []string{
			strconv.Itoa(n.ID), n.Date, n.Company, n.Sector, n.Headline,
			n.Sentiment, strconv.FormatFloat(n.SentimentScore, 'f', 3, 64),
			n.MarketImpact, n.Source,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadNewsCSV replaces the financial_news table with records read from CSV.
// The first record must be the header row.
func (s *Store) LoadNewsCSV(ctx context.Context, r io.Reader) error {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return fmt.Errorf("reading csv: %w", err)
	}
	if len(records) < 1 {
		return fmt.Errorf("csv is empty")
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[name] = i
	}
	for _, required := range []string{"date", "company", "sector", "headline", "sentiment", "sentiment_score"} {
		if _, ok := col[required]; !ok {
			return fmt.Errorf("csv missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM financial_news"); err != nil {
		return fmt.Errorf("clearing financial_news: %w", err)
	}

	for idx, record := range records[1:] {
		id, err := strconv.Atoi(field(record, "id"))
		if err != nil {
			id = idx + 1
		}
		score, err := strconv.ParseFloat(field(record, "sentiment_score"), 64)
		if err != nil {
			return fmt.Errorf("record %d: bad sentiment_score: %w", idx+1, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO financial_news
				(id, date, company, sector, headline, sentiment, sentiment_score, market_impact, source)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, field(record, "date"), field(record, "company"),
			field(record, "sector"), field(record, "headline"),
			field(record, "sentiment"), score,
			field(record, "market_impact"), field(record, "source"),
		)
		if err != nil {
			return fmt.Errorf("record %d: %w", idx+1, err)
		}
	}

	return tx.Commit()
}
