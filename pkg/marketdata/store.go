package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	// MaxQueryRows bounds how many rows a query renders before truncating.
	MaxQueryRows = 10
)

const schema = `
CREATE TABLE IF NOT EXISTS financial_news (
	id              INTEGER PRIMARY KEY,
	date            TEXT NOT NULL,
	company         TEXT NOT NULL,
	sector          TEXT NOT NULL,
	headline        TEXT NOT NULL,
	sentiment       TEXT NOT NULL,
	sentiment_score REAL NOT NULL,
	market_impact   TEXT NOT NULL DEFAULT '',
	source          TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS stock_prices (
	company     TEXT NOT NULL,
	date        TEXT NOT NULL,
	open_price  REAL NOT NULL,
	high_price  REAL NOT NULL,
	low_price   REAL NOT NULL,
	close_price REAL NOT NULL,
	volume      INTEGER NOT NULL,
	PRIMARY KEY (company, date)
);
CREATE TABLE IF NOT EXISTS economic_indicators (
	date      TEXT NOT NULL,
	indicator TEXT NOT NULL,
	value     REAL NOT NULL,
	period    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (date, indicator)
);
`

// Store wraps the SQLite financial database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// StoreConfig holds configuration for the financial store.
type StoreConfig struct {
	// DBPath is the SQLite database file. ":memory:" for an in-memory store.
	DBPath string

	// Logger is optional.
	Logger *zap.Logger
}

// NewStore opens (creating if needed) the financial database.
func NewStore(cfg StoreConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("marketdata: db path is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Query executes a read-only SQL statement and renders the result as aligned
// text, truncated to MaxQueryRows. Errors come back as a descriptive string
// rather than an error value so the agent loop can hand them to the model.
func (s *Store) Query(ctx context.Context, query string) string {
	if err := checkReadOnly(query); err != nil {
		return fmt.Sprintf("Database error: %v", err)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		s.logger.Debug("query failed", zap.String("query", query), zap.Error(err))
		return fmt.Sprintf("Database error: %v", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Sprintf("Database error: %v", err)
	}

	var records [][]string
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Sprintf("Database error: %v", err)
		}
		record := make([]string, len(cols))
		for i, v := range values {
			record[i] = renderValue(v)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return fmt.Sprintf("Database error: %v", err)
	}

	if len(records) == 0 {
		return "No results found for the query."
	}

	total := len(records)
	truncated := total > MaxQueryRows
	if truncated {
		records = records[:MaxQueryRows]
	}

	out := renderTable(cols, records)
	if truncated {
		out += fmt.Sprintf("\n... (showing first %d of %d results)", MaxQueryRows, total)
	}
	return out
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for package-internal writers (seeding,
// CSV import). Tool-facing access goes through Query only.
func (s *Store) DB() *sql.DB {
	return s.db
}

// checkReadOnly accepts a single SELECT or WITH statement and nothing else.
func checkReadOnly(query string) error {
	trimmed := strings.TrimSpace(query)
	trimmed = strings.TrimSuffix(trimmed, ";")
	if trimmed == "" {
		return fmt.Errorf("empty query")
	}
	if strings.Contains(trimmed, ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("only SELECT queries are allowed")
	}
	return nil
}

// renderValue formats a scanned SQL value for display.
func renderValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(t)
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// renderTable lays out records in space-padded columns under a header row.
func renderTable(cols []string, records [][]string) string {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	for _, record := range records {
		for i, v := range record {
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	formatRow := func(row []string) string {
		var b strings.Builder
		for i, v := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(v)
			b.WriteString(strings.Repeat(" ", widths[i]-len(v)))
		}
		return strings.TrimRight(b.String(), " ")
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, formatRow(cols))
	for _, record := range records {
		lines = append(lines, formatRow(record))
	}
	return strings.Join(lines, "\n")
}
