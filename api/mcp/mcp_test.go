package mcp_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/finsightco/finsight/api/mcp"
	"github.com/finsightco/finsight/pkg/agent"
	"github.com/finsightco/finsight/pkg/history"
	"github.com/finsightco/finsight/pkg/marketdata"
	testutils "github.com/finsightco/finsight/pkg/utils/test"
)

var _ = Describe("MCP Server", func() {
	var (
		server *mcp.Server
		store  *marketdata.Store
		a      *agent.Agent
	)

	BeforeEach(func() {
		var err error
		store, err = marketdata.NewStore(marketdata.StoreConfig{DBPath: ":memory:"})
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Seed(context.Background(), marketdata.SeedOpts{Seed: 7, Now: time.Now()})).To(Succeed())

		a, err = agent.New(agent.Config{
			Primary: testutils.NewMockBackend("analysis"),
			History: history.New(10),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = mcp.NewServer(mcp.Config{
			Agent:  a,
			Store:  store,
			Logger: zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(store.Close()).To(Succeed())
	})

	Describe("NewServer", func() {
		It("returns an error when agent is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Store:  store,
				Logger: zap.NewNop(),
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("agent is required"))
		})

		It("returns an error when store is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Agent:  a,
				Logger: zap.NewNop(),
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("store is required"))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Agent: a,
				Store: store,
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger is required"))
		})

		It("creates a server with valid config", func() {
			Expect(server).NotTo(BeNil())
		})

		It("returns an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})

		It("skips validation for a noop server", func() {
			noop, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(noop).NotTo(BeNil())
		})
	})
})
