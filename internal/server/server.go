// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"mcp-tpn-planner/internal/config"
	"mcp-tpn-planner/internal/models"
	"mcp-tpn-planner/internal/planner"
	"mcp-tpn-planner/internal/storage"
)

const (
	serverName = "tpn-planner"
	Version    = "1.0.0"
)

type toolHandler func(context.Context, *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type PlannerServer struct {
	server   *server.Server
	echo     *echo.Echo
	storage  *storage.SQLiteStorage
	resolver *planner.Resolver
	config   *config.Config
	logger   zerolog.Logger
	metrics  *metrics
	tools    map[string]toolHandler
}

// NewPlannerServer wires the HTTP routes, the MCP tool endpoint and metrics
// around an open storage and a resolver.
func NewPlannerServer(cfg *config.Config, stor *storage.SQLiteStorage, resolver *planner.Resolver, logger zerolog.Logger) (*PlannerServer, error) {
	s := newPlannerServer(cfg, stor, resolver, logger)

	// Create MCP server (without transport, we handle HTTP through echo)
	mcpServer, err := server.NewServer(
		nil,
		server.WithServerInfo(protocol.Implementation{
			Name:    serverName,
			Version: Version,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	s.server = mcpServer

	return s, nil
}

func newPlannerServer(cfg *config.Config, stor *storage.SQLiteStorage, resolver *planner.Resolver, logger zerolog.Logger) *PlannerServer {
	s := &PlannerServer{
		storage:  stor,
		resolver: resolver,
		config:   cfg,
		logger:   logger,
		metrics:  newMetrics(),
	}
	s.registerTools()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(Recovery(logger))
	e.Use(RequestID())
	e.Use(Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type", RequestIDHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": Version,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	// MCP tool calls; the root path is kept for existing clients
	e.POST("/", s.handleMCP)
	e.POST("/mcp", s.handleMCP)

	s.RegisterRoutes(e.Group("/api/v1"))

	s.echo = e
	return s
}

// Handler exposes the router, mainly for tests.
func (s *PlannerServer) Handler() http.Handler {
	return s.echo
}

func (s *PlannerServer) handleMCP(c echo.Context) error {
	var request protocol.CallToolRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %v", err))
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("Unknown tool: %s", request.Name))
	}

	result, err := handler(c.Request().Context(), &request)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (s *PlannerServer) Start(ctx context.Context) error {
	addr := s.config.Addr()
	s.logger.Info().Str("addr", addr).Msg("starting tpn planner server")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests before the database is closed.
func (s *PlannerServer) Stop(ctx context.Context) error {
	var shutdownErr error
	if s.echo != nil {
		shutdownErr = s.echo.Shutdown(ctx)
	}
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			s.logger.Error().Err(err).Msg("failed to close storage")
		}
	}
	return shutdownErr
}

// resolve is shared by the MCP tool and the REST endpoint.
func (s *PlannerServer) resolve(ctx context.Context, params *ResolvePlanParams) (*models.Schedule, error) {
	req, err := params.request(s.config)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	sched, err := s.resolver.Resolve(ctx, req.Profile, req.TotalDays)
	s.metrics.observe(string(req.Profile.Variant), start, sched, err)
	if err != nil {
		return nil, err
	}

	if params.Save {
		if err := s.storage.SaveSchedule(sched); err != nil {
			return nil, fmt.Errorf("failed to save schedule: %w", err)
		}
		s.metrics.saved.Inc()
		s.logger.Info().Str("schedule_id", sched.ID).Str("patient", sched.Patient.Name).Msg("schedule saved")
	}
	return sched, nil
}

func (s *PlannerServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}

var errInvalidParams = errors.New("invalid parameters")

// toHTTPError maps domain errors onto status codes.
func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errInvalidParams),
		errors.Is(err, models.ErrInvalidProfile),
		errors.Is(err, models.ErrUnknownVariant),
		errors.Is(err, models.ErrUnknownCondition),
		errors.Is(err, models.ErrMissingVariantRule),
		errors.Is(err, models.ErrInvalidDayCount):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
