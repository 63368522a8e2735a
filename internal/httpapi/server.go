// Package httpapi provides the HTTP API for sift.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fernwehlabs/sift/internal/classifier"
	"github.com/fernwehlabs/sift/internal/memory"
)

// Server exposes the classifier over HTTP.
type Server struct {
	echo       *echo.Echo
	classifier classifier.Service
	logger     *zap.Logger
	config     *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// NewServer creates a new HTTP server around the classifier.
func NewServer(svc classifier.Service, logger *zap.Logger, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("classifier service cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 8642}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:       e,
		classifier: svc,
		logger:     logger,
		config:     cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/score", s.handleScore)
	v1.POST("/label", s.handleLabel)
	v1.POST("/decide", s.handleDecide)
	v1.POST("/respond", s.handleRespond)
	v1.GET("/items/:category", s.handleItems)
	v1.POST("/snapshot", s.handleSnapshot)
}

// ScoreRequest is the request body for POST /api/v1/score.
type ScoreRequest struct {
	Text string `json:"text"`
}

// ScoreResponse is the response body for POST /api/v1/score.
type ScoreResponse struct {
	Score  float64 `json:"score"`
	Banned bool    `json:"banned"`
}

// LabelRequest is the request body for POST /api/v1/label.
type LabelRequest struct {
	Text     string `json:"text"`
	Safe     bool   `json:"safe"`
	Category string `json:"category"`
}

// DecideRequest is the request body for POST /api/v1/decide.
type DecideRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// RespondRequest is the request body for POST /api/v1/respond.
type RespondRequest struct {
	Prompt   string `json:"prompt"`
	Category string `json:"category"`
}

// RespondResponse is the response body for POST /api/v1/respond.
type RespondResponse struct {
	Match string `json:"match,omitempty"`
	Found bool   `json:"found"`
}

// ItemsResponse is the response body for GET /api/v1/items/:category.
type ItemsResponse struct {
	Category string   `json:"category"`
	Items    []string `json:"items"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleScore(c echo.Context) error {
	var req ScoreRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid score request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}

	score := s.classifier.Score(c.Request().Context(), req.Text)
	return c.JSON(http.StatusOK, ScoreResponse{
		Score:  score,
		Banned: score >= s.classifier.BanThreshold(),
	})
}

func (s *Server) handleLabel(c echo.Context) error {
	var req LabelRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid label request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}

	res, err := s.classifier.SetLabel(c.Request().Context(), req.Text, req.Safe, req.Category)
	if err != nil {
		return s.mapError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleDecide(c echo.Context) error {
	var req DecideRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid decide request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text field is required")
	}

	d, err := s.classifier.Decide(c.Request().Context(), req.Text, req.Category)
	if err != nil {
		return s.mapError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (s *Server) handleRespond(c echo.Context) error {
	var req RespondRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn("invalid respond request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Prompt == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt field is required")
	}

	match, found, err := s.classifier.Respond(c.Request().Context(), req.Prompt, req.Category)
	if err != nil {
		return s.mapError(err)
	}
	return c.JSON(http.StatusOK, RespondResponse{Match: match, Found: found})
}

func (s *Server) handleItems(c echo.Context) error {
	category := c.Param("category")
	items, err := s.classifier.Items(c.Request().Context(), category)
	if err != nil {
		return s.mapError(err)
	}
	if items == nil {
		items = []string{}
	}
	return c.JSON(http.StatusOK, ItemsResponse{Category: category, Items: items})
}

func (s *Server) handleSnapshot(c echo.Context) error {
	if err := s.classifier.Save(c.Request().Context()); err != nil {
		return s.mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// mapError converts domain errors into HTTP status codes.
func (s *Server) mapError(err error) error {
	if errors.Is(err, memory.ErrUnknownCategory) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.logger.Error("request failed", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
