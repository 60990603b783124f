package marketdata_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/finsightco/finsight/pkg/marketdata"
)

var _ = Describe("Store", func() {
	var (
		store *marketdata.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		store, err = marketdata.NewStore(marketdata.StoreConfig{DBPath: ":memory:"})
		Expect(err).NotTo(HaveOccurred())

		err = store.Seed(ctx, marketdata.SeedOpts{
			Seed: 42,
			Now:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("Query", func() {
		It("renders a header row plus data rows", func() {
			out := store.Query(ctx, "SELECT company, sector FROM financial_news WHERE id = 1")
			lines := strings.Split(out, "\n")
			Expect(lines).To(HaveLen(2))
			Expect(lines[0]).To(HavePrefix("company"))
			Expect(lines[1]).To(ContainSubstring("TechCorp"))
		})

		It("truncates to ten rows with a count suffix", func() {
			out := store.Query(ctx, "SELECT headline FROM financial_news")
			Expect(out).To(ContainSubstring("... (showing first 10 of 25 results)"))
			// Header + 10 rows + suffix line.
			Expect(strings.Split(out, "\n")).To(HaveLen(12))
		})

		It("returns a fixed message when no rows match", func() {
			out := store.Query(ctx, "SELECT * FROM financial_news WHERE company = 'Nobody'")
			Expect(out).To(Equal("No results found for the query."))
		})

		It("returns a descriptive string on SQL errors", func() {
			out := store.Query(ctx, "SELECT * FROM no_such_table")
			Expect(out).To(HavePrefix("Database error:"))
		})

		It("rejects writes", func() {
			out := store.Query(ctx, "DELETE FROM financial_news")
			Expect(out).To(HavePrefix("Database error:"))
			Expect(out).To(ContainSubstring("only SELECT"))

			count := store.Query(ctx, "SELECT COUNT(*) AS n FROM financial_news")
			Expect(count).To(ContainSubstring("25"))
		})

		It("rejects stacked statements", func() {
			out := store.Query(ctx, "SELECT 1; DROP TABLE financial_news")
			Expect(out).To(HavePrefix("Database error:"))
		})

		It("accepts WITH queries", func() {
			out := store.Query(ctx, "WITH t AS (SELECT company FROM financial_news) SELECT COUNT(*) AS n FROM t")
			Expect(out).To(ContainSubstring("25"))
		})
	})

	Describe("Seed", func() {
		It("is reproducible for a fixed seed", func() {
			other, err := marketdata.NewStore(marketdata.StoreConfig{DBPath: ":memory:"})
			Expect(err).NotTo(HaveOccurred())
			defer other.Close()

			err = other.Seed(ctx, marketdata.SeedOpts{
				Seed: 42,
				Now:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			})
			Expect(err).NotTo(HaveOccurred())

			q := "SELECT id, date, headline, sentiment_score FROM financial_news ORDER BY id"
			Expect(other.Query(ctx, q)).To(Equal(store.Query(ctx, q)))
		})

		It("covers all five companies and sectors", func() {
			companies, err := store.Companies(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(companies).To(ConsistOf(
				"EnergyGiant", "FinanceInc", "HealthPlus", "RetailMax", "TechCorp"))

			sectors, err := store.Sectors(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sectors).To(ConsistOf(
				"Energy", "Finance", "Healthcare", "Retail", "Technology"))
		})
	})

	Describe("documents", func() {
		It("builds one news document per headline with metadata", func() {
			docs, err := store.NewsDocuments(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(25))
			Expect(docs[0].Content).NotTo(BeEmpty())
			Expect(docs[0].Metadata).To(HaveKey("company"))
			Expect(docs[0].Metadata).To(HaveKey("date"))
			Expect(docs[0].Metadata).To(HaveKeyWithValue("source_row", "0"))
		})

		It("summarizes the latest price per company", func() {
			docs, err := store.StockSummaryDocuments(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(5))
			Expect(docs[0].Content).To(ContainSubstring("closed at"))
			Expect(docs[0].Metadata).To(HaveKeyWithValue("date", "2024-06-01"))
		})
	})

	Describe("CSV round trip", func() {
		It("exports and reloads the news table", func() {
			var buf bytes.Buffer
			Expect(store.ExportNewsCSV(ctx, &buf)).To(Succeed())
			Expect(buf.String()).To(HavePrefix("id,date,company"))

			before := store.Query(ctx, "SELECT id, headline FROM financial_news ORDER BY id LIMIT 5")
			Expect(store.LoadNewsCSV(ctx, bytes.NewReader(buf.Bytes()))).To(Succeed())
			after := store.Query(ctx, "SELECT id, headline FROM financial_news ORDER BY id LIMIT 5")
			Expect(after).To(Equal(before))
		})

		It("rejects CSV missing required columns", func() {
			bad := "id,headline\n1,hello\n"
			err := store.LoadNewsCSV(ctx, strings.NewReader(bad))
			Expect(err).To(MatchError(ContainSubstring("missing required column")))
		})
	})
})

var _ = Describe("NewStore", func() {
	It("requires a db path", func() {
		_, err := marketdata.NewStore(marketdata.StoreConfig{})
		Expect(err).To(HaveOccurred())
	})

	It("creates the schema in a fresh file", func() {
		dir := GinkgoT().TempDir()
		store, err := marketdata.NewStore(marketdata.StoreConfig{
			DBPath: fmt.Sprintf("%s/finsight.db", dir),
		})
		Expect(err).NotTo(HaveOccurred())
		defer store.Close()

		out := store.Query(context.Background(), "SELECT COUNT(*) AS n FROM stock_prices")
		Expect(out).To(ContainSubstring("0"))
	})
})
