package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/finsightco/finsight/pkg/llm"
	"github.com/finsightco/finsight/pkg/llm/ollama"
)

func TestOllama(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ollama Suite")
}

func newFakeOllama() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models": [{"name": "llama3.2"}, {"name": "nomic-embed-text"}]}`))
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []llm.Message `json:"messages"`
			Stream   bool          `json:"stream"`
		}
		Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
		Expect(body.Stream).To(BeFalse())
		w.Write([]byte(`{"message": {"role": "assistant", "content": "local answer"}}`))
	})
	return httptest.NewServer(mux)
}

var _ = Describe("Client", func() {
	It("degrades when the server is unreachable", func() {
		c := ollama.NewClient(ollama.ClientConfig{BaseURL: "http://127.0.0.1:1"})
		Expect(c.Available()).To(BeFalse())

		_, err := c.Chat(context.Background(), []llm.Message{llm.NewMessage(llm.RoleUser, "hi")})
		Expect(err).To(MatchError(llm.ErrUnavailable))
	})

	It("probes reachability at construction", func() {
		server := newFakeOllama()
		defer server.Close()

		c := ollama.NewClient(ollama.ClientConfig{BaseURL: server.URL})
		Expect(c.Available()).To(BeTrue())
	})

	It("chats against /api/chat", func() {
		server := newFakeOllama()
		defer server.Close()

		c := ollama.NewClient(ollama.ClientConfig{BaseURL: server.URL})
		out, err := c.Chat(context.Background(), []llm.Message{llm.NewMessage(llm.RoleUser, "hi")})
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("local answer"))
	})

	It("wraps system and user in ChatWithSystem", func() {
		server := newFakeOllama()
		defer server.Close()

		c := ollama.NewClient(ollama.ClientConfig{BaseURL: server.URL})
		out, err := c.ChatWithSystem(context.Background(), "be brief", "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("local answer"))
	})

	It("lists pulled models", func() {
		server := newFakeOllama()
		defer server.Close()

		c := ollama.NewClient(ollama.ClientConfig{BaseURL: server.URL})
		models, err := c.ListModels(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(models).To(ContainElement("llama3.2"))
	})
})
