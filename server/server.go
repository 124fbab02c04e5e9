// Package server exposes the assistant over HTTP.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cineanalyst/cineanalyst/agent"
	"github.com/cineanalyst/cineanalyst/log"
)

// Server wraps a gin engine around an Assistant.
type Server struct {
	engine    *gin.Engine
	assistant *agent.Assistant
	addr      string
}

// Options configures the HTTP server.
type Options struct {
	Host string
	Port int
}

// New builds the HTTP server with its routes and middleware installed.
func New(assistant *agent.Assistant, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(AccessLog())

	s := &Server{
		engine:    engine,
		assistant: assistant,
		addr:      fmt.Sprintf("%s:%d", opts.Host, opts.Port),
	}

	engine.GET("/health", s.handleHealth)

	v1 := engine.Group("/api/v1")
	v1.POST("/analyze", s.handleAnalyze)

	return s
}

// Run blocks serving HTTP until the listener fails.
func (s *Server) Run() error {
	log.Info("http server listening on %s", s.addr)
	return s.engine.Run(s.addr)
}

// Handler exposes the underlying handler for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid request format: " + err.Error(),
		})
		return
	}

	history, err := req.history()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = "guest"
	}
	log.Debug("analyze request from %s (%d prior turns)", userID, len(history))

	analysis, err := s.assistant.Analyze(c.Request.Context(), req.Query, history)
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrEmptyQuery):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input: empty query"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "failed to analyze query: " + err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, newAnalyzeResponse(analysis))
}
