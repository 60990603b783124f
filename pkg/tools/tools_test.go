package tools_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/finsightco/finsight/pkg/llm"
	"github.com/finsightco/finsight/pkg/marketdata"
	"github.com/finsightco/finsight/pkg/tools"
)

func newSeededStore(ctx context.Context) *marketdata.Store {
	store, err := marketdata.NewStore(marketdata.StoreConfig{DBPath: ":memory:"})
	Expect(err).NotTo(HaveOccurred())
	Expect(store.Seed(ctx, marketdata.SeedOpts{Seed: 7, Now: time.Now()})).To(Succeed())
	return store
}

var _ = Describe("Registry", func() {
	var (
		ctx   context.Context
		store *marketdata.Store
		reg   *tools.Registry
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newSeededStore(ctx)
		reg = tools.DefaultRegistry(store)
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	It("registers the closed tool set in order", func() {
		specs := reg.Specs()
		names := make([]string, len(specs))
		for i, s := range specs {
			names[i] = s.Name
		}
		Expect(names).To(Equal([]string{
			tools.NameDatabaseQuery,
			tools.NameWebSearch,
			tools.NameCalculator,
			tools.NameRatioCalculator,
			tools.NameMarketSentiment,
		}))
	})

	It("looks tools up by name", func() {
		t, ok := reg.Get(tools.NameCalculator)
		Expect(ok).To(BeTrue())
		Expect(t.Name()).To(Equal(tools.NameCalculator))

		_, ok = reg.Get("nonexistent")
		Expect(ok).To(BeFalse())
	})

	It("describes every tool with a parameter schema", func() {
		for _, spec := range reg.Specs() {
			Expect(spec.Description).NotTo(BeEmpty())
			Expect(spec.Parameters).To(HaveKeyWithValue("type", "object"))
		}
	})

	It("converts unknown tool calls to a descriptive string", func() {
		out := reg.Invoke(ctx, llm.ToolCall{Name: "no_such_tool", Arguments: json.RawMessage(`{}`)})
		Expect(out).To(Equal("Unknown tool: no_such_tool"))
	})

	It("dispatches calls by name", func() {
		out := reg.Invoke(ctx, llm.ToolCall{
			Name:      tools.NameCalculator,
			Arguments: json.RawMessage(`{"expression": "2 + 3"}`),
		})
		Expect(out).To(Equal("5"))
	})
})

var _ = Describe("DatabaseTool", func() {
	var (
		ctx   context.Context
		store *marketdata.Store
		tool  *tools.DatabaseTool
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newSeededStore(ctx)
		tool = tools.NewDatabaseTool(store)
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	It("runs read-only queries", func() {
		out := tool.Invoke(ctx, json.RawMessage(`{"query": "SELECT COUNT(*) AS n FROM financial_news"}`))
		Expect(out).To(ContainSubstring("25"))
	})

	It("returns a descriptive string for bad SQL", func() {
		out := tool.Invoke(ctx, json.RawMessage(`{"query": "SELEKT"}`))
		Expect(out).To(HavePrefix("Database error:"))
	})

	It("requires a query argument", func() {
		out := tool.Invoke(ctx, json.RawMessage(`{}`))
		Expect(out).To(HavePrefix("Database error:"))
	})
})

var _ = Describe("SentimentTool", func() {
	var (
		ctx   context.Context
		store *marketdata.Store
		tool  *tools.SentimentTool
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newSeededStore(ctx)
		tool = tools.NewSentimentTool(store)
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	It("aggregates label counts with an average score", func() {
		out := tool.Invoke(ctx, json.RawMessage(`{}`))
		Expect(out).To(HavePrefix("Market sentiment analysis:\n"))
		Expect(out).To(ContainSubstring("sentiment"))
		Expect(out).To(ContainSubstring("positive"))
		Expect(out).To(ContainSubstring("avg_score"))
	})

	It("filters by sector", func() {
		out := tool.Invoke(ctx, json.RawMessage(`{"sector": "Technology"}`))
		Expect(out).To(HavePrefix("Market sentiment analysis:\n"))
		Expect(out).NotTo(ContainSubstring("Database error"))
	})

	It("reports no results for unknown companies", func() {
		out := tool.Invoke(ctx, json.RawMessage(`{"company": "Nobody"}`))
		Expect(out).To(ContainSubstring("No results found for the query."))
	})

	It("neutralizes quoting in filter values", func() {
		out := tool.Invoke(ctx, json.RawMessage(`{"company": "x' OR '1'='1"}`))
		Expect(out).To(ContainSubstring("No results found for the query."))
	})
})

var _ = Describe("WebSearchTool", func() {
	It("renders instant answers", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Query().Get("format")).To(Equal("json"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"Heading": "Inflation", "Abstract": "Inflation is a rise in prices.", "AbstractSource": "Wikipedia", "AbstractURL": "https://example.org"}`))
		}))
		defer server.Close()

		tool := tools.NewWebSearchTool(tools.WebSearchConfig{
			BaseURL:     server.URL,
			HTMLBaseURL: server.URL,
		})
		out := tool.Invoke(context.Background(), json.RawMessage(`{"query": "inflation"}`))
		Expect(out).To(ContainSubstring("Inflation"))
		Expect(out).To(ContainSubstring("Wikipedia"))
	})

	It("falls back to HTML snippets when the instant answer is empty", func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{}`))
		})
		mux.HandleFunc("/html/", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<a class="result__snippet" href="#">Rates <b>rose</b> today</a>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		tool := tools.NewWebSearchTool(tools.WebSearchConfig{
			BaseURL:     server.URL,
			HTMLBaseURL: server.URL,
		})
		out := tool.Invoke(context.Background(), json.RawMessage(`{"query": "rates"}`))
		Expect(out).To(ContainSubstring("Rates rose today"))
	})

	It("converts transport failures to an error string", func() {
		tool := tools.NewWebSearchTool(tools.WebSearchConfig{
			BaseURL:     "http://127.0.0.1:1",
			HTMLBaseURL: "http://127.0.0.1:1",
		})
		out := tool.Invoke(context.Background(), json.RawMessage(`{"query": "anything"}`))
		Expect(out).To(HavePrefix("Web search error:"))
	})

	It("requires a query argument", func() {
		tool := tools.NewWebSearchTool(tools.WebSearchConfig{})
		out := tool.Invoke(context.Background(), json.RawMessage(`{}`))
		Expect(out).To(Equal("Web search error: query is required"))
	})
})
