// Package relay implements the thin backend process that proxies advisor chat
// requests to the upstream LLM API. The upstream credential lives only here;
// clients post {messages, tools, system} and get the upstream JSON back
// verbatim.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/retirewiselabs/retirewised/internal/config"
)

const anthropicAPIVersion = "2023-06-01"

// Server is the chat relay HTTP server.
type Server struct {
	echo    *echo.Echo
	client  *http.Client
	cfg     *config.RelayConfig
	limiter *rate.Limiter
	logger  *zap.Logger
	addr    string
}

// NewServer creates the relay server.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if !cfg.Relay.APIKey.IsSet() {
		return nil, fmt.Errorf("relay api_key is required (set RELAY_API_KEY)")
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
		echo:    e,
		client:  &http.Client{Timeout: 120 * time.Second},
		cfg:     &cfg.Relay,
		limiter: rate.NewLimiter(rate.Limit(cfg.Relay.RateLimit), cfg.Relay.Burst),
		logger:  logger,
		addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
	}
	s.registerRoutes()
	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.POST("/api/chat", s.handleChat)
}

// ChatRequest is the client-facing request body for POST /api/chat. The
// payloads are forwarded untouched, so they stay raw.
type ChatRequest struct {
	Messages json.RawMessage `json:"messages"`
	Tools    json.RawMessage `json:"tools"`
	System   json.RawMessage `json:"system"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// errorBody matches the original relay's error shape.
type errorBody struct {
	Error string `json:"error"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleChat forwards one chat completion request upstream. Upstream
// responses - success or error - pass through with their original status and
// body; only transport failures produce a relay-generated 500.
func (s *Server) handleChat(c echo.Context) error {
	start := time.Now()

	if !s.limiter.Allow() {
		chatRequests.WithLabelValues("throttled").Inc()
		return c.JSON(http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
	}

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		chatRequests.WithLabelValues("bad_request").Inc()
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}
	if len(req.Messages) == 0 {
		chatRequests.WithLabelValues("bad_request").Inc()
		return c.JSON(http.StatusBadRequest, errorBody{Error: "messages field is required"})
	}

	upstream := map[string]any{
		"model":      s.cfg.Model,
		"max_tokens": s.cfg.MaxTokens,
		"messages":   req.Messages,
	}
	if len(req.System) > 0 {
		upstream["system"] = req.System
	}
	if len(req.Tools) > 0 {
		upstream["tools"] = req.Tools
	}
	body, err := json.Marshal(upstream)
	if err != nil {
		chatRequests.WithLabelValues("error").Inc()
		return c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
	}

	hreq, err := http.NewRequestWithContext(c.Request().Context(),
		http.MethodPost, s.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		chatRequests.WithLabelValues("error").Inc()
		return c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("x-api-key", s.cfg.APIKey.Value())
	hreq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := s.client.Do(hreq)
	if err != nil {
		s.logger.Error("upstream request failed", zap.Error(err))
		chatRequests.WithLabelValues("error").Inc()
		return c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		chatRequests.WithLabelValues("error").Inc()
		return c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error()})
	}

	result := "success"
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result = "upstream_error"
		s.logger.Warn("upstream returned error",
			zap.Int("status", resp.StatusCode))
	}
	chatRequests.WithLabelValues(result).Inc()
	chatDuration.Observe(time.Since(start).Seconds())

	return c.JSONBlob(resp.StatusCode, payload)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting relay server", zap.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down relay server")
	return s.echo.Shutdown(ctx)
}
