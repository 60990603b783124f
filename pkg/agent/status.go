package agent

// Status reports component availability, inspectable before use.
type Status struct {
	OpenAIAvailable bool `json:"openai_available"`
	OllamaAvailable bool `json:"ollama_available"`
	RAGEnabled      bool `json:"rag_enabled"`
	ToolsEnabled    bool `json:"tools_enabled"`
	AgentAvailable  bool `json:"agent_executor_available"`
}

// Status returns the current availability of every component.
func (a *Agent) Status() Status {
	_, agentOK := a.toolLoopEnabled(Options{})
	return Status{
		OpenAIAvailable: a.cfg.Primary != nil && a.cfg.Primary.Available(),
		OllamaAvailable: a.cfg.Secondary != nil && a.cfg.Secondary.Available(),
		RAGEnabled:      a.ragEnabled(Options{}),
		ToolsEnabled:    a.cfg.EnableTools && a.cfg.Registry != nil,
		AgentAvailable:  agentOK,
	}
}
