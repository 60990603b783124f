package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/finsightco/finsight/pkg/agent"
	"github.com/finsightco/finsight/pkg/llm"
	"github.com/finsightco/finsight/pkg/utils"
)

// AnalyzeRequest is the /analyze request body.
type AnalyzeRequest struct {
	Query    string `json:"query"`
	UseRAG   *bool  `json:"use_rag,omitempty"`
	UseTools *bool  `json:"use_tools,omitempty"`
}

// AnalyzeResponse is the /analyze response body.
type AnalyzeResponse struct {
	Query            string `json:"query"`
	Response         string `json:"response"`
	ContextUsed      bool   `json:"context_used"`
	Timestamp        string `json:"timestamp"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// handleRoot returns the service banner.
func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Financial Analysis API",
		"version": utils.Version,
		"status":  "active",
	})
}

// handleHealth reports liveness regardless of agent availability.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "healthy",
		"timestamp":       time.Now().Format(time.RFC3339),
		"agent_available": s.agent != nil,
	})
}

// handleStatus reports per-component availability.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	if s.agent == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(llm.ErrorResponse{Error: "agent not available"})
	}
	return c.JSON(s.agent.Status())
}

// handleAnalyze runs one analysis. Safety-filter rejections are a client
// error; agent failures surface as a descriptive server error.
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	if s.agent == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(llm.ErrorResponse{Error: "agent not available"})
	}

	var req AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}
	if req.Query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "query is required"})
	}

	if allowed, reason := s.guard.CheckInput(req.Query); !allowed {
		s.logger.Warn("input rejected", zap.String("reason", reason))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: reason})
	}

	started := time.Now()
	result, err := s.agent.AnalyzeWith(c.Context(), req.Query, agent.Options{
		UseRAG:   req.UseRAG,
		UseTools: req.UseTools,
	})
	if err != nil {
		s.logger.Error("analysis failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "analysis failed: " + err.Error()})
	}

	response, warnings := s.guard.CheckOutput(result.Response)
	for _, w := range warnings {
		s.logger.Debug("output filter", zap.String("warning", w))
	}

	return c.JSON(AnalyzeResponse{
		Query:            result.Query,
		Response:         response,
		ContextUsed:      result.ContextUsed,
		Timestamp:        time.Now().Format(time.RFC3339),
		ProcessingTimeMs: time.Since(started).Milliseconds(),
	})
}

// handleCompanies lists the companies present in the news table.
func (s *Server) handleCompanies(c *fiber.Ctx) error {
	if s.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(llm.ErrorResponse{Error: "store not available"})
	}
	companies, err := s.store.Companies(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list companies"})
	}
	return c.JSON(fiber.Map{"companies": companies})
}

// handleSectors lists the sectors present in the news table.
func (s *Server) handleSectors(c *fiber.Ctx) error {
	if s.store == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(llm.ErrorResponse{Error: "store not available"})
	}
	sectors, err := s.store.Sectors(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list sectors"})
	}
	return c.JSON(fiber.Map{"sectors": sectors})
}
