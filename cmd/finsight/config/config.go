// Package configcmder provides the config command for managing persistent
// finsight configuration stored in the .finsight/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent finsight configuration.

Configuration is stored as config.toml in the .finsight/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.sqlite_path, api.listen, client.api_target,
  llm.openai_api_key, llm.openai_model, llm.ollama_url, llm.ollama_model,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  vector_store.provider, vector_store.target, vector_store.path,
  agent.retrieval_k, agent.max_iterations, agent.history_size,
  agent.enable_rag, agent.enable_tools,
  events.enabled, events.brokers, events.topic,
  mcp.enabled, mcp.listen

Use subcommands to get, set, or list configuration values:
  finsight config set <key> <value>    Set a configuration value
  finsight config get <key>            Get a configuration value
  finsight config list                 List all configuration values

Examples:
  finsight config set llm.ollama_model llama3.2
  finsight config set agent.max_iterations 6
  finsight config get embedding.model
  finsight config list`

const configShortDesc string = "Manage persistent finsight configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
