package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/finsightco/finsight/pkg/agent"
	"github.com/finsightco/finsight/pkg/guard"
	"github.com/finsightco/finsight/pkg/marketdata"
)

// Server is the HTTP API for the financial analysis agent.
type Server struct {
	config Config
	agent  *agent.Agent
	store  *marketdata.Store
	guard  *guard.Guard
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server. The agent may be nil: analysis and
// status endpoints then answer 503 while health stays up.
func NewServer(config Config, a *agent.Agent, store *marketdata.Store, g *guard.Guard, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	if g == nil {
		g = guard.NewGuard(nil)
	}

	s := &Server{
		config: config,
		agent:  a,
		store:  store,
		guard:  g,
		logger: logger,
		app:    app,
	}

	app.Get("/", s.handleRoot)
	app.Get("/health", s.handleHealth)
	app.Get("/status", s.handleStatus)
	app.Post("/analyze", s.handleAnalyze)
	app.Get("/companies", s.handleCompanies)
	app.Get("/sectors", s.handleSectors)

	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
