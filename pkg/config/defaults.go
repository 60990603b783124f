package config

const (
	defaultAPIListen = ":8000"

	defaultClientAPITarget = "http://localhost:8000"

	defaultOpenAIModel = "gpt-4o-mini"
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llama3.2"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "embeddinggemma"
	defaultEmbeddingDimensions = 768

	defaultVectorProvider = "memory"

	defaultRetrievalK    = 5
	defaultMaxIterations = 10
	defaultHistorySize   = 10

	defaultEventBrokers = "localhost:9092"
	defaultEventTopic   = "finsight.analysis.completed"

	defaultMCPListen = ":8100"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		LLM: LLMConfig{
			OpenAIModel: defaultOpenAIModel,
			OllamaURL:   defaultOllamaURL,
			OllamaModel: defaultOllamaModel,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		Agent: AgentConfig{
			RetrievalK:    defaultRetrievalK,
			MaxIterations: defaultMaxIterations,
			HistorySize:   defaultHistorySize,
			EnableRAG:     true,
			EnableTools:   true,
		},
		Events: EventsConfig{
			Brokers: defaultEventBrokers,
			Topic:   defaultEventTopic,
		},
		MCP: MCPConfig{
			Listen: defaultMCPListen,
		},
	}
}
