// Package servecmder provides the serve command for running the analysis
// API server.
package servecmder

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/finsightco/finsight/api"
	apimcp "github.com/finsightco/finsight/api/mcp"
	"github.com/finsightco/finsight/pkg/agent"
	"github.com/finsightco/finsight/pkg/config"
	"github.com/finsightco/finsight/pkg/docprep"
	"github.com/finsightco/finsight/pkg/embeddings"
	embeddingutils "github.com/finsightco/finsight/pkg/embeddings/utils"
	"github.com/finsightco/finsight/pkg/eventstream"
	"github.com/finsightco/finsight/pkg/eventstream/kafka"
	"github.com/finsightco/finsight/pkg/eventstream/nop"
	"github.com/finsightco/finsight/pkg/guard"
	"github.com/finsightco/finsight/pkg/history"
	"github.com/finsightco/finsight/pkg/llm"
	"github.com/finsightco/finsight/pkg/llm/ollama"
	"github.com/finsightco/finsight/pkg/llm/openai"
	"github.com/finsightco/finsight/pkg/logger"
	"github.com/finsightco/finsight/pkg/marketdata"
	"github.com/finsightco/finsight/pkg/tools"
	"github.com/finsightco/finsight/pkg/vector"
	vectorutils "github.com/finsightco/finsight/pkg/vector/utils"
	"github.com/finsightco/finsight/pkg/worker"
)

const serveLongDesc string = `Run the finsight analysis API server.

The server answers financial questions over HTTP:
  POST /analyze    Run a query through the agent
  GET  /status     Component availability
  GET  /companies  Companies present in the news dataset
  GET  /sectors    Sectors present in the news dataset

On startup the market-data store is seeded with a synthetic dataset if it is
empty, and the news corpus is chunked, embedded, and indexed in the
background so the API can serve while the vector index fills.

Examples:
  finsight serve
  finsight serve --listen :9000 --sqlite ./finsight.db
  finsight serve --vector-store-provider sqlite --vector-store-path ./vectors.db`

const serveShortDesc string = "Run the finsight API server"

var serveFlags = config.FlagSet{
	config.FlagAPIListen: {
		Name: "listen", Shorthand: "l", ViperKey: "api.listen",
		Description: "Address for the API server to listen on",
	},
	config.FlagSQLite: {
		Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path",
		Description: "Path to the market-data SQLite database (default: in-memory)",
	},
	config.FlagEmbeddingProv: {
		Name: "embedding-provider", ViperKey: "embedding.provider",
		Description: "Embedding provider (ollama, openai)",
	},
	config.FlagEmbeddingTgt: {
		Name: "embedding-target", ViperKey: "embedding.target",
		Description: "Embedding provider URL",
	},
	config.FlagEmbeddingModel: {
		Name: "embedding-model", ViperKey: "embedding.model",
		Description: "Embedding model name",
	},
	config.FlagEmbeddingDims: {
		Name: "embedding-dimensions", ViperKey: "embedding.dimensions",
		Description: "Embedding vector dimensions",
	},
	config.FlagVectorStoreProv: {
		Name: "vector-store-provider", ViperKey: "vector_store.provider",
		Description: "Vector store provider (memory, sqlite, chroma)",
	},
	config.FlagVectorStoreTgt: {
		Name: "vector-store-target", ViperKey: "vector_store.target",
		Description: "Vector store URL (chroma provider)",
	},
	config.FlagVectorStorePath: {
		Name: "vector-store-path", ViperKey: "vector_store.path",
		Description: "Vector store database path (sqlite provider)",
	},
	config.FlagMCPListen: {
		Name: "mcp-listen", ViperKey: "mcp.listen",
		Description: "Address for the MCP tool server to listen on",
	},
}

var serveFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagSQLite,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagVectorStorePath,
	config.FlagMCPListen,
}

type ServeCommander struct {
	listen        string
	sqlitePath    string
	embeddingProv string
	embeddingTgt  string
	embeddingMod  string
	embeddingDims uint
	vectorProv    string
	vectorTgt     string
	vectorPath    string
	mcpListen     string
	mcpEnabled    bool
	debug         bool

	v      *viper.Viper
	logger *zap.Logger
}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}
			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)
			_ = v.BindPFlag("mcp.enabled", cmd.Flags().Lookup("mcp"))
			cmder.v = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingTgt, &cmder.embeddingTgt)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingModel, &cmder.embeddingMod)
	config.AddUintFlag(cmd, serveFlags, config.FlagEmbeddingDims, &cmder.embeddingDims)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreProv, &cmder.vectorProv)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreTgt, &cmder.vectorTgt)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStorePath, &cmder.vectorPath)
	config.AddStringFlag(cmd, serveFlags, config.FlagMCPListen, &cmder.mcpListen)
	cmd.Flags().BoolVar(&cmder.mcpEnabled, "mcp", false, "Also serve analysis tools over MCP")

	return cmd
}

func (c *ServeCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	embedder, index, pool := c.buildRetrieval(ctx, store)
	if pool != nil {
		defer pool.Close()
	}
	if index != nil {
		defer index.Close()
	}

	primary, secondary := c.buildBackends()

	publisher, err := c.buildPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	a, err := agent.New(agent.Config{
		Primary:       primary,
		Secondary:     secondary,
		Embedder:      embedder,
		Index:         index,
		Registry:      tools.DefaultRegistry(store),
		History:       history.New(c.v.GetInt("agent.history_size")),
		Publisher:     publisher,
		Logger:        c.logger,
		RetrievalK:    c.v.GetInt("agent.retrieval_k"),
		MaxIterations: c.v.GetInt("agent.max_iterations"),
		EnableRAG:     c.v.GetBool("agent.enable_rag") && embedder != nil && index != nil,
		EnableTools:   c.v.GetBool("agent.enable_tools"),
	})
	if err != nil {
		return fmt.Errorf("creating agent: %w", err)
	}

	apiServer := api.NewServer(api.Config{
		ListenAddr: c.v.GetString("api.listen"),
	}, a, store, guard.NewGuard(nil), c.logger)

	errChan := make(chan error, 2)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	mcpShutdown, err := c.startMCP(a, store, errChan)
	if err != nil {
		return err
	}

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		if mcpShutdown != nil {
			mcpShutdown()
		}
		return apiServer.Shutdown()
	}
}

// openStore opens the market-data store and seeds it when empty.
func (c *ServeCommander) openStore(ctx context.Context) (*marketdata.Store, error) {
	path := c.v.GetString("storage.sqlite_path")
	if path == "" {
		path = ":memory:"
		c.logger.Info("using in-memory market data store")
	} else {
		c.logger.Info("using SQLite market data store", zap.String("path", path))
	}

	store, err := marketdata.NewStore(marketdata.StoreConfig{
		DBPath: path,
		Logger: c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening market data store: %w", err)
	}

	news, err := store.News(ctx)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("checking market data: %w", err)
	}
	if len(news) == 0 {
		c.logger.Info("seeding synthetic market data")
		if err := store.Seed(ctx, marketdata.SeedOpts{Seed: 42, Now: time.Now()}); err != nil {
			store.Close()
			return nil, fmt.Errorf("seeding market data: %w", err)
		}
	}

	return store, nil
}

// buildRetrieval constructs the embedder, vector driver, and the background
// worker pool that fills the index with the news corpus. Failures disable
// retrieval instead of aborting startup.
func (c *ServeCommander) buildRetrieval(ctx context.Context, store *marketdata.Store) (embeddings.Embedder, vector.Driver, *worker.Pool) {
	if !c.v.GetBool("agent.enable_rag") {
		return nil, nil, nil
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.v.GetString("embedding.provider"),
		TargetURL:    c.v.GetString("embedding.target"),
		Model:        c.v.GetString("embedding.model"),
		APIKey:       c.openAIKey(),
	})
	if err != nil {
		c.logger.Warn("embedder unavailable, retrieval disabled", zap.Error(err))
		return nil, nil, nil
	}

	index, err := vectorutils.NewVectorDriver(&vectorutils.NewVectorDriverOpts{
		ProviderType: c.v.GetString("vector_store.provider"),
		TargetURL:    c.v.GetString("vector_store.target"),
		DBPath:       c.v.GetString("vector_store.path"),
		Dimensions:   c.v.GetUint("embedding.dimensions"),
		Logger:       c.logger,
	})
	if err != nil {
		c.logger.Warn("vector store unavailable, retrieval disabled", zap.Error(err))
		embedder.Close()
		return nil, nil, nil
	}

	pool, err := worker.NewPool(&worker.Config{
		VectorDriver: index,
		Embedder:     embedder,
		Logger:       c.logger,
	})
	if err != nil {
		c.logger.Warn("indexing pool unavailable, retrieval disabled", zap.Error(err))
		index.Close()
		embedder.Close()
		return nil, nil, nil
	}

	c.enqueueCorpus(ctx, store, pool)

	return embedder, index, pool
}

// enqueueCorpus chunks the news and stock-summary documents and hands them
// to the pool so indexing happens off the serving path.
func (c *ServeCommander) enqueueCorpus(ctx context.Context, store *marketdata.Store, pool *worker.Pool) {
	splitter := docprep.NewSplitter(docprep.DefaultChunkSize, docprep.DefaultChunkOverlap)

	docs, err := store.NewsDocuments(ctx)
	if err != nil {
		c.logger.Warn("loading news documents", zap.Error(err))
		return
	}

	summaries, err := store.StockSummaryDocuments(ctx)
	if err != nil {
		c.logger.Warn("loading stock summaries", zap.Error(err))
	} else {
		docs = append(docs, summaries...)
	}

	chunks := docprep.SplitDocuments(docs, splitter)
	if !pool.Enqueue(worker.Job{Chunks: chunks}) {
		c.logger.Warn("indexing queue full, corpus not indexed",
			zap.Int("chunks", len(chunks)),
		)
		return
	}

	c.logger.Info("indexing corpus in background",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
	)
}

// buildBackends constructs the chat backends. OpenAI is primary when a key
// is present, Ollama otherwise.
func (c *ServeCommander) buildBackends() (llm.Backend, llm.Backend) {
	openaiClient := openai.NewClient(openai.ClientConfig{
		APIKey: c.openAIKey(),
		Model:  c.v.GetString("llm.openai_model"),
	})

	ollamaClient := ollama.NewClient(ollama.ClientConfig{
		BaseURL: c.v.GetString("llm.ollama_url"),
		Model:   c.v.GetString("llm.ollama_model"),
	})

	c.logger.Info("chat backends",
		zap.Bool("openai", openaiClient.Available()),
		zap.Bool("ollama", ollamaClient.Available()),
	)

	if openaiClient.Available() {
		return openaiClient, ollamaClient
	}
	return ollamaClient, openaiClient
}

// openAIKey resolves the OpenAI API key from config with the conventional
// environment variable as fallback.
func (c *ServeCommander) openAIKey() string {
	if key := c.v.GetString("llm.openai_api_key"); key != "" {
		return key
	}
	return os.Getenv("OPENAI_API_KEY")
}

// buildPublisher constructs the analysis-event publisher.
func (c *ServeCommander) buildPublisher() (eventstream.Publisher, error) {
	if !c.v.GetBool("events.enabled") {
		return nop.NewPublisher(), nil
	}

	brokers := strings.Split(c.v.GetString("events.brokers"), ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers: brokers,
		Topic:   c.v.GetString("events.topic"),
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}

	c.logger.Info("publishing analysis events",
		zap.Strings("brokers", brokers),
		zap.String("topic", c.v.GetString("events.topic")),
	)
	return publisher, nil
}

// startMCP serves the MCP tool server on its own listener when enabled.
// Returns a shutdown func, or nil when MCP is disabled.
func (c *ServeCommander) startMCP(a *agent.Agent, store *marketdata.Store, errChan chan error) (func(), error) {
	if !c.v.GetBool("mcp.enabled") {
		return nil, nil
	}

	mcpServer, err := apimcp.NewServer(apimcp.Config{
		Agent:  a,
		Store:  store,
		Logger: c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp", mcpServer.Handler())

	srv := &http.Server{
		Addr:              c.v.GetString("mcp.listen"),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	c.logger.Info("starting MCP server", zap.String("listen", srv.Addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}, nil
}
