// Package finsightcmder
package finsightcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/finsightco/finsight/cmd/finsight/ask"
	configcmder "github.com/finsightco/finsight/cmd/finsight/config"
	seedcmder "github.com/finsightco/finsight/cmd/finsight/seed"
	servecmder "github.com/finsightco/finsight/cmd/finsight/serve"
	versioncmder "github.com/finsightco/finsight/cmd/version"
)

const finsightLongDesc string = `Finsight is a financial analysis assistant.

It answers market questions by combining retrieval over financial news,
a set of analysis tools (SQL, ratios, sentiment, calculator, web search),
and pluggable LLM backends.

Common commands:
  finsight serve       Run the analysis API server
  finsight ask         Ask a one-shot question against a running server
  finsight seed        Generate and load synthetic market data`

const finsightShortDesc string = "Finsight - Financial Analysis Assistant"

func NewFinsightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finsight",
		Short: finsightShortDesc,
		Long:  finsightLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Path to the .finsight config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(seedcmder.NewSeedCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
