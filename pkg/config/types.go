package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent finsight configuration stored as
// config.toml in the .finsight/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Storage     StorageConfig     `toml:"storage"`
	API         APIConfig         `toml:"api"`
	Client      ClientConfig      `toml:"client"`
	LLM         LLMConfig         `toml:"llm"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Agent       AgentConfig       `toml:"agent"`
	Events      EventsConfig      `toml:"events"`
	MCP         MCPConfig         `toml:"mcp"`
}

// StorageConfig holds the market-data SQLite settings.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// API server (e.g. finsight ask). Values are full URLs (scheme + host + port).
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// LLMConfig holds chat backend settings. The OpenAI key may also come from
// the OPENAI_API_KEY environment variable.
type LLMConfig struct {
	OpenAIAPIKey string `toml:"openai_api_key,omitempty"`
	OpenAIModel  string `toml:"openai_model,omitempty"`
	OllamaURL    string `toml:"ollama_url,omitempty"`
	OllamaModel  string `toml:"ollama_model,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// VectorStoreConfig holds vector store settings. Path applies to the sqlite
// provider, Target to the chroma provider.
type VectorStoreConfig struct {
	Provider string `toml:"provider,omitempty"`
	Target   string `toml:"target,omitempty"`
	Path     string `toml:"path,omitempty"`
}

// AgentConfig holds agent loop settings.
type AgentConfig struct {
	RetrievalK    int  `toml:"retrieval_k,omitempty"`
	MaxIterations int  `toml:"max_iterations,omitempty"`
	HistorySize   int  `toml:"history_size,omitempty"`
	EnableRAG     bool `toml:"enable_rag"`
	EnableTools   bool `toml:"enable_tools"`
}

// EventsConfig holds analysis-event publishing settings.
type EventsConfig struct {
	Enabled bool   `toml:"enabled,omitempty"`
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// MCPConfig holds MCP tool-server settings.
type MCPConfig struct {
	Enabled bool   `toml:"enabled,omitempty"`
	Listen  string `toml:"listen,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func intKey(get func(c *Config) *int, name string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string {
			if *get(c) == 0 {
				return ""
			}
			return strconv.Itoa(*get(c))
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*get(c) = n
			return nil
		},
	}
}

func boolKey(get func(c *Config) *bool, name string) configKeyInfo {
	return configKeyInfo{
		get: func(c *Config) string { return strconv.FormatBool(*get(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
			*get(c) = b
			return nil
		},
	}
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"llm.openai_api_key": {
		get: func(c *Config) string { return c.LLM.OpenAIAPIKey },
		set: func(c *Config, v string) error { c.LLM.OpenAIAPIKey = v; return nil },
	},
	"llm.openai_model": {
		get: func(c *Config) string { return c.LLM.OpenAIModel },
		set: func(c *Config, v string) error { c.LLM.OpenAIModel = v; return nil },
	},
	"llm.ollama_url": {
		get: func(c *Config) string { return c.LLM.OllamaURL },
		set: func(c *Config, v string) error { c.LLM.OllamaURL = v; return nil },
	},
	"llm.ollama_model": {
		get: func(c *Config) string { return c.LLM.OllamaModel },
		set: func(c *Config, v string) error { c.LLM.OllamaModel = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
	"vector_store.provider": {
		get: func(c *Config) string { return c.VectorStore.Provider },
		set: func(c *Config, v string) error { c.VectorStore.Provider = v; return nil },
	},
	"vector_store.target": {
		get: func(c *Config) string { return c.VectorStore.Target },
		set: func(c *Config, v string) error { c.VectorStore.Target = v; return nil },
	},
	"vector_store.path": {
		get: func(c *Config) string { return c.VectorStore.Path },
		set: func(c *Config, v string) error { c.VectorStore.Path = v; return nil },
	},
	"agent.retrieval_k":    intKey(func(c *Config) *int { return &c.Agent.RetrievalK }, "agent.retrieval_k"),
	"agent.max_iterations": intKey(func(c *Config) *int { return &c.Agent.MaxIterations }, "agent.max_iterations"),
	"agent.history_size":   intKey(func(c *Config) *int { return &c.Agent.HistorySize }, "agent.history_size"),
	"agent.enable_rag":     boolKey(func(c *Config) *bool { return &c.Agent.EnableRAG }, "agent.enable_rag"),
	"agent.enable_tools":   boolKey(func(c *Config) *bool { return &c.Agent.EnableTools }, "agent.enable_tools"),
	"events.enabled":       boolKey(func(c *Config) *bool { return &c.Events.Enabled }, "events.enabled"),
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
	"mcp.enabled": boolKey(func(c *Config) *bool { return &c.MCP.Enabled }, "mcp.enabled"),
	"mcp.listen": {
		get: func(c *Config) string { return c.MCP.Listen },
		set: func(c *Config, v string) error { c.MCP.Listen = v; return nil },
	},
}
