package tools_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/finsightco/finsight/pkg/tools"
)

var _ = Describe("Calculate", func() {
	It("respects operator precedence", func() {
		Expect(tools.Calculate("10 + 5 * 2")).To(Equal("20"))
	})

	It("handles parentheses", func() {
		Expect(tools.Calculate("(10 + 5) * 2")).To(Equal("30"))
	})

	It("evaluates the percentage-of idiom", func() {
		Expect(tools.Calculate("20% of 50")).To(Equal("10"))
	})

	It("converts bare percentages to fractions", func() {
		Expect(tools.Calculate("50% * 200")).To(Equal("100"))
	})

	It("renders integers without a decimal point", func() {
		Expect(tools.Calculate("150 * 1.05")).To(Equal("157.5"))
		Expect(tools.Calculate("4 / 2")).To(Equal("2"))
	})

	It("renders non-integers to 4 places with trailing zeros stripped", func() {
		Expect(tools.Calculate("1 / 3")).To(Equal("0.3333"))
		Expect(tools.Calculate("1 / 8")).To(Equal("0.125"))
	})

	It("supports unary minus", func() {
		Expect(tools.Calculate("-5 + 3")).To(Equal("-2"))
		Expect(tools.Calculate("2 * -3")).To(Equal("-6"))
	})

	It("rejects expressions containing letters", func() {
		Expect(tools.Calculate("import os")).To(Equal("Error: Invalid characters in expression"))
		Expect(tools.Calculate("2 + exec(x)")).To(Equal("Error: Invalid characters in expression"))
	})

	It("rejects characters outside the allow-list", func() {
		Expect(tools.Calculate("2 ^ 3")).To(Equal("Error: Invalid characters in expression"))
		Expect(tools.Calculate("1; 2")).To(Equal("Error: Invalid characters in expression"))
	})

	It("reports division by zero", func() {
		Expect(tools.Calculate("1 / 0")).To(HavePrefix("Calculation error:"))
	})

	It("reports malformed expressions", func() {
		Expect(tools.Calculate("1 +")).To(HavePrefix("Calculation error:"))
		Expect(tools.Calculate("(1 + 2")).To(HavePrefix("Calculation error:"))
		Expect(tools.Calculate("")).To(HavePrefix("Calculation error:"))
	})
})
