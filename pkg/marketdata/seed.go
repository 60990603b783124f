package marketdata

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// CompanyProfile describes one synthetic company used for seeding.
type CompanyProfile struct {
	Name     string
	Sector   string
	Business string
}

// DefaultCompanies is the fixed roster of synthetic companies.
func DefaultCompanies() []CompanyProfile {
	return []CompanyProfile{
		{Name: "TechCorp", Sector: "Technology", Business: "software and cloud services"},
		{Name: "FinanceInc", Sector: "Finance", Business: "banking and financial services"},
		{Name: "HealthPlus", Sector: "Healthcare", Business: "medical devices and pharmaceuticals"},
		{Name: "EnergyGiant", Sector: "Energy", Business: "renewable energy and utilities"},
		{Name: "RetailMax", Sector: "Retail", Business: "e-commerce and retail operations"},
	}
}

var sectorHeadlines = map[string][]string{
	"Technology": {
		"%s reports strong Q3 cloud revenue growth",
		"%s announces new AI product launch",
		"%s expands data center operations globally",
		"%s faces cybersecurity investigation",
		"%s partners with major enterprise clients",
	},
	"Healthcare": {
		"%s receives FDA approval for new medical device",
		"%s reports positive clinical trial results",
		"%s expands pharmaceutical research division",
		"%s faces regulatory inquiry on drug pricing",
		"%s announces healthcare technology partnership",
	},
	"Finance": {
		"%s reports record quarterly earnings",
		"%s expands digital banking services",
		"%s increases lending portfolio",
		"%s faces regulatory capital requirements",
		"%s announces fintech acquisition",
	},
	"Energy": {
		"%s completes major solar farm project",
		"%s reports renewable energy growth",
		"%s expands wind power operations",
		"%s faces environmental compliance review",
		"%s announces clean energy investment",
	},
	"Retail": {
		"%s reports strong holiday sales",
		"%s expands e-commerce platform",
		"%s opens new distribution centers",
		"%s faces supply chain disruptions",
		"%s announces loyalty program enhancement",
	},
}

var newsSources = []string{"Reuters", "Bloomberg", "WSJ", "Financial Times"}

var impactLevels = []string{"high", "medium", "low"}

// Ordered so fixed seeds produce identical datasets.
var indicatorBaselines = []struct {
	Name     string
	Baseline float64
}{
	{"GDP Growth Rate", 2.4},
	{"Inflation Rate", 3.1},
	{"Unemployment Rate", 4.2},
	{"Interest Rate", 5.25},
	{"Consumer Spending", 1.8},
}

// SeedOpts configures synthetic data generation.
type SeedOpts struct {
	// Seed drives the generator. Fixed seeds yield reproducible datasets.
	Seed int64

	// Now anchors the dated records. Defaults to time.Now.
	Now time.Time

	// PriceDays is how many trading days of prices to generate per company.
	// Defaults to 30.
	PriceDays int
}

// Seed replaces the store's contents with a synthetic dataset: dated news
// headlines with sentiment labels per company, random-walk stock prices, and
// monthly economic indicators.
func (s *Store) Seed(ctx context.Context, opts SeedOpts) error {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	days := opts.PriceDays
	if days <= 0 {
		days = 30
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"financial_news", "stock_prices", "economic_indicators"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	id := 0
	for _, company := range DefaultCompanies() {
		for j, headline := range sectorHeadlines[company.Sector] {
			id++
			sentiment := []string{"positive", "negative", "neutral"}[j%3]
			var score float64
			switch sentiment {
			case "positive":
				score = 0.6 + rng.Float64()*0.3
			case "negative":
				score = -0.9 + rng.Float64()*0.3
			default:
				score = -0.1 + rng.Float64()*0.2
			}
			date := now.AddDate(0, 0, -(1 + rng.Intn(30))).Format("2006-01-02")

			_, err := tx.ExecContext(ctx, `
				INSERT INTO financial_news
					(id, date, company, sector, headline, sentiment, sentiment_score, market_impact, source)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, date, company.Name, company.Sector,
				fmt.Sprintf(headline, company.Name),
				sentiment, round3(score),
				impactLevels[rng.Intn(len(impactLevels))],
				newsSources[rng.Intn(len(newsSources))],
			)
			if err != nil {
				return fmt.Errorf("inserting news: %w", err)
			}
		}
	}

	for _, company := range DefaultCompanies() {
		price := 50 + rng.Float64()*200
		for d := days - 1; d >= 0; d-- {
			date := now.AddDate(0, 0, -d).Format("2006-01-02")
			open := price
			change := (rng.Float64() - 0.5) * 0.06
			closing := open * (1 + change)
			high := max(open, closing) * (1 + rng.Float64()*0.02)
			low := min(open, closing) * (1 - rng.Float64()*0.02)
			volume := int64(500_000 + rng.Intn(5_000_000))

			_, err := tx.ExecContext(ctx, `
				INSERT INTO stock_prices
					(company, date, open_price, high_price, low_price, close_price, volume)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				company.Name, date,
				round2(open), round2(high), round2(low), round2(closing), volume,
			)
			if err != nil {
				return fmt.Errorf("inserting prices: %w", err)
			}
			price = closing
		}
	}

	for month := 5; month >= 0; month-- {
		date := now.AddDate(0, -month, 0).Format("2006-01-02")
		period := now.AddDate(0, -month, 0).Format("2006-01")
		for _, ind := range indicatorBaselines {
			value := ind.Baseline + (rng.Float64()-0.5)*0.4
			_, err := tx.ExecContext(ctx, `
				INSERT INTO economic_indicators (date, indicator, value, period)
				VALUES (?, ?, ?, ?)`,
				date, ind.Name, round2(value), period,
			)
			if err != nil {
				return fmt.Errorf("inserting indicators: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	s.logger.Info("seeded financial dataset",
		zap.Int("news", id),
		zap.Int("companies", len(DefaultCompanies())),
		zap.Int("price_days", days),
	)
	return nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func round3(v float64) float64 {
	if v < 0 {
		return float64(int64(v*1000-0.5)) / 1000
	}
	return float64(int64(v*1000+0.5)) / 1000
}

