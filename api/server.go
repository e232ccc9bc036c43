package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"forecast-scraper/analyzer"
	"forecast-scraper/datasource"
	"forecast-scraper/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

// RunStore is the read side of the run archive
type RunStore interface {
	LatestRun(ctx context.Context) (models.Run, bool, error)
	GetRun(ctx context.Context, id int64) (models.Run, bool, error)
	ListRuns(ctx context.Context, limit int) ([]models.RunSummary, error)
}

// Refresher runs the pipeline on demand against a freshly fetched page
type Refresher interface {
	Refresh(ctx context.Context) (models.Run, error)
}

// RunResponse is a run together with its summary figures
type RunResponse struct {
	models.Run
	Summary analyzer.Summary `json:"summary"`
}

// Server represents the API server
type Server struct {
	store     RunStore
	refresher Refresher
	engine    *gin.Engine
	server    *http.Server
}

// NewServer creates a new API server. refresher may be nil, in which case
// on-demand refreshes are refused.
func NewServer(store RunStore, refresher Refresher, port int, allowedOrigins []string) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if len(allowedOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
		}))
	}

	s := &Server{
		store:     store,
		refresher: refresher,
		engine:    engine,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	engine.GET("/api/health", s.handleHealthCheck)
	engine.GET("/api/forecast/latest", s.handleGetLatest)
	engine.GET("/api/forecast/runs", s.handleListRuns)
	engine.GET("/api/forecast/runs/:id", s.handleGetRun)
	engine.GET("/api/forecast/runs/:id/night", s.handleGetNight)
	engine.POST("/api/forecast/refresh", s.handleRefresh)

	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins the API server and blocks until it stops
func (s *Server) Start() error {
	slog.Info("starting API server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleGetLatest returns the most recent archived run
func (s *Server) handleGetLatest(c *gin.Context) {
	run, ok, err := s.store.LatestRun(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No forecast runs archived yet"})
		return
	}
	c.JSON(http.StatusOK, toRunResponse(run))
}

// handleListRuns returns run summaries, newest first
func (s *Server) handleListRuns(c *gin.Context) {
	limit := defaultRunLimit
	if v := c.Query("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
			if limit > maxRunLimit {
				limit = maxRunLimit
			}
		}
	}

	runs, err := s.store.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetRun returns one archived run
func (s *Server) handleGetRun(c *gin.Context) {
	run, ok := s.lookupRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toRunResponse(run))
}

// handleGetNight returns the night rows of one archived run
func (s *Server) handleGetNight(c *gin.Context) {
	run, ok := s.lookupRun(c)
	if !ok {
		return
	}
	night := analyzer.NightRows(&run.Table)
	if night == nil {
		night = []models.ForecastRow{}
	}
	c.JSON(http.StatusOK, gin.H{
		"id":    run.ID,
		"rows":  night,
		"count": len(night),
	})
}

// handleRefresh runs the pipeline now and returns the new run
func (s *Server) handleRefresh(c *gin.Context) {
	if s.refresher == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "On-demand refresh is disabled"})
		return
	}

	run, err := s.refresher.Refresh(c.Request.Context())
	if err != nil {
		var netErr *datasource.NetworkError
		if errors.As(err, &netErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("Failed to fetch forecast: %v", err)})
			return
		}
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRunResponse(run))
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) lookupRun(c *gin.Context) (models.Run, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid run id: %s", c.Param("id"))})
		return models.Run{}, false
	}

	run, ok, err := s.store.GetRun(c.Request.Context(), id)
	if err != nil {
		s.internalError(c, err)
		return models.Run{}, false
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("No forecast run found with id %d", id)})
		return models.Run{}, false
	}
	return run, true
}

func (s *Server) internalError(c *gin.Context, err error) {
	slog.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func toRunResponse(run models.Run) RunResponse {
	return RunResponse{
		Run:     run,
		Summary: analyzer.Summarize(&run.Table),
	}
}
