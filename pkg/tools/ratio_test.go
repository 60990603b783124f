package tools_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/finsightco/finsight/pkg/tools"
)

var _ = Describe("CalculateRatio", func() {
	It("computes P/E ratio", func() {
		out := tools.CalculateRatio(tools.RatioArgs{
			MetricType: "pe_ratio", Price: 120, EarningsPerShare: 6,
		})
		Expect(out).To(Equal("P/E Ratio: 20.00"))
	})

	It("reports zero EPS without dividing", func() {
		out := tools.CalculateRatio(tools.RatioArgs{
			MetricType: "pe_ratio", Price: 120, EarningsPerShare: 0,
		})
		Expect(out).To(Equal("P/E Ratio: Cannot calculate (EPS is zero)"))
	})

	It("computes ROE as a percentage", func() {
		out := tools.CalculateRatio(tools.RatioArgs{
			MetricType: "roe", NetIncome: 50, ShareholdersEquity: 200,
		})
		Expect(out).To(Equal("ROE: 25.00%"))
	})

	It("computes current ratio", func() {
		out := tools.CalculateRatio(tools.RatioArgs{
			MetricType: "current_ratio", CurrentAssets: 300, CurrentLiabilities: 150,
		})
		Expect(out).To(Equal("Current Ratio: 2.00"))
	})

	It("computes debt-to-equity", func() {
		out := tools.CalculateRatio(tools.RatioArgs{
			MetricType: "debt_to_equity", TotalDebt: 80, ShareholdersEquity: 160,
		})
		Expect(out).To(Equal("Debt-to-Equity: 0.50"))
	})

	It("computes profit margin", func() {
		out := tools.CalculateRatio(tools.RatioArgs{
			MetricType: "profit_margin", NetIncome: 30, Revenue: 120,
		})
		Expect(out).To(Equal("Profit Margin: 25.00%"))
	})

	It("is case-insensitive on the metric name", func() {
		out := tools.CalculateRatio(tools.RatioArgs{
			MetricType: "PE_Ratio", Price: 10, EarningsPerShare: 5,
		})
		Expect(out).To(Equal("P/E Ratio: 2.00"))
	})

	It("reports unsupported metrics", func() {
		out := tools.CalculateRatio(tools.RatioArgs{MetricType: "sharpe"})
		Expect(out).To(Equal("Unsupported metric type: sharpe"))
	})
})
