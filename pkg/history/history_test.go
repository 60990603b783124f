package history_test

import (
	"fmt"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/finsightco/finsight/pkg/history"
	"github.com/finsightco/finsight/pkg/llm"
)

func TestHistory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "History Suite")
}

var _ = Describe("History", func() {
	It("retains at most the configured number of messages", func() {
		h := history.New(4)
		for i := 0; i < 10; i++ {
			h.Append(llm.NewMessage(llm.RoleUser, fmt.Sprintf("msg-%d", i)))
		}
		Expect(h.Len()).To(Equal(4))

		msgs := h.Messages()
		Expect(msgs[0].Content).To(Equal("msg-6"))
		Expect(msgs[3].Content).To(Equal("msg-9"))
	})

	It("keeps turn ordering: user then assistant", func() {
		h := history.New(10)
		h.AppendTurn("question", "answer")
		msgs := h.Messages()
		Expect(msgs).To(HaveLen(2))
		Expect(msgs[0].Role).To(Equal(llm.RoleUser))
		Expect(msgs[1].Role).To(Equal(llm.RoleAssistant))
	})

	It("evicts whole prefixes when a batch overflows the limit", func() {
		h := history.New(3)
		h.Append(
			llm.NewMessage(llm.RoleUser, "a"),
			llm.NewMessage(llm.RoleAssistant, "b"),
			llm.NewMessage(llm.RoleUser, "c"),
			llm.NewMessage(llm.RoleAssistant, "d"),
		)
		msgs := h.Messages()
		Expect(msgs).To(HaveLen(3))
		Expect(msgs[0].Content).To(Equal("b"))
	})

	Describe("Window", func() {
		var h *history.History

		BeforeEach(func() {
			h = history.New(10)
			for i := 0; i < 6; i++ {
				h.Append(llm.NewMessage(llm.RoleUser, fmt.Sprintf("msg-%d", i)))
			}
		})

		It("returns the last n messages", func() {
			w := h.Window(2)
			Expect(w).To(HaveLen(2))
			Expect(w[0].Content).To(Equal("msg-4"))
			Expect(w[1].Content).To(Equal("msg-5"))
		})

		It("caps n at the retained length", func() {
			Expect(h.Window(100)).To(HaveLen(6))
		})

		It("returns nothing for non-positive n", func() {
			Expect(h.Window(0)).To(BeEmpty())
		})
	})

	It("returns copies that do not alias internal state", func() {
		h := history.New(10)
		h.Append(llm.NewMessage(llm.RoleUser, "original"))
		msgs := h.Messages()
		msgs[0].Content = "mutated"
		Expect(h.Messages()[0].Content).To(Equal("original"))
	})

	It("is safe under concurrent appends", func() {
		h := history.New(8)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				h.AppendTurn(fmt.Sprintf("q-%d", i), fmt.Sprintf("a-%d", i))
			}(i)
		}
		wg.Wait()
		Expect(h.Len()).To(Equal(8))
	})

	It("clears retained messages", func() {
		h := history.New(5)
		h.AppendTurn("q", "a")
		h.Clear()
		Expect(h.Len()).To(BeZero())
	})
})
