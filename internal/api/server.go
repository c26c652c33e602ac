// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/ibor-valuation/internal/logging"
	"github.com/ibor-valuation/internal/models"
	"github.com/ibor-valuation/internal/types"
)

// Service interfaces for dependency injection and testing

// PositionServiceInterface values holdings
type PositionServiceInterface interface {
	ResolvePosition(ctx context.Context, asOf time.Time, portfolioCode, instrumentCode string) (*models.PositionValuation, error)
	ListPositions(ctx context.Context, asOf time.Time, portfolioCode string, page, size int) (*types.PagedResult[models.PositionValuation], error)
	PositionDetail(ctx context.Context, asOf time.Time, portfolioCode, instrumentCode, lotView string) (*models.PositionDetail, error)
}

// PriceServiceInterface serves price series
type PriceServiceInterface interface {
	ResolvePrices(ctx context.Context, instrumentCode string, from, to time.Time, source, targetCurrency string) ([]models.PricePoint, error)
}

// InstrumentServiceInterface looks up instrument versions
type InstrumentServiceInterface interface {
	InstrumentAsOf(ctx context.Context, code string, asOf time.Time) (models.Instrument, error)
}

// CashServiceInterface projects cash
type CashServiceInterface interface {
	ResolveCashProjection(ctx context.Context, portfolioCodes []string, horizonDays *int) ([]models.CashProjectionRow, error)
}

// Pinger is a dependency the health check pings
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the handlers' collaborators
type Services struct {
	Positions   PositionServiceInterface
	Prices      PriceServiceInterface
	Instruments InstrumentServiceInterface
	Cash        CashServiceInterface
}

// Server represents the HTTP API server.
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	services   Services
	health     map[string]Pinger
	config     *ServerConfig
	logger     *logging.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	AllowedOrigins    []string
	RequestsPerSecond float64
	Burst             int
}

// ContractVersion is sent as X-Contract-Version on position responses
const ContractVersion = "1"

// NewServer creates a new API server instance. health names the
// dependencies pinged by GET /health.
func NewServer(config *ServerConfig, services Services, health map[string]Pinger, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	s := &Server{
		router:   mux.NewRouter(),
		services: services,
		health:   health,
		config:   config,
		logger:   logger,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RequestsPerSecond, s.config.Burst)

	// Order matters: request ids and logging wrap everything else
	s.router.Use(RequestIDMiddleware(s.logger))
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware(s.config.AllowedOrigins))
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Positions
	api.HandleFunc("/positions", s.handleListPositions).Methods("GET", "OPTIONS")
	api.HandleFunc("/positions/{portfolioCode}/{instrumentCode}", s.handleResolvePosition).Methods("GET", "OPTIONS")
	api.HandleFunc("/positions/{portfolioCode}/{instrumentCode}/detail", s.handlePositionDetail).Methods("GET", "OPTIONS")

	// Market data and reference data
	api.HandleFunc("/prices/{instrumentCode}", s.handleResolvePrices).Methods("GET", "OPTIONS")
	api.HandleFunc("/instruments/{instrumentCode}", s.handleInstrumentAsOf).Methods("GET", "OPTIONS")

	// Cash
	api.HandleFunc("/cash-projection", s.handleCashProjection).Methods("GET", "OPTIONS")
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleHealth pings every dependency. Any failure reports 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.health))
	for name, dep := range s.health {
		if err := dep.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	state := "healthy"
	if status != http.StatusOK {
		state = "degraded"
	}
	respondJSON(w, status, map[string]interface{}{
		"status":  state,
		"service": "ibor-valuation",
		"checks":  checks,
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
