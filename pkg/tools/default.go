package tools

import "github.com/finsightco/finsight/pkg/marketdata"

// DefaultRegistry wires the full tool set over the given store.
func DefaultRegistry(store *marketdata.Store) *Registry {
	return NewRegistry(
		NewDatabaseTool(store),
		NewWebSearchTool(WebSearchConfig{}),
		NewCalculatorTool(),
		NewRatioTool(),
		NewSentimentTool(store),
	)
}
