// Package server exposes the simulator and the treasury reports over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/etnz/treasury"
	"github.com/etnz/treasury/date"
	"github.com/etnz/treasury/montecarlo"
	"github.com/etnz/treasury/store"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// DefaultRunsLimit is the number of runs listed when the request does not say.
const DefaultRunsLimit = 20

// Runs is the archive of simulation runs.
type Runs interface {
	GetRun(ctx context.Context, id string) (store.Run, error)
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
}

// Server represents the HTTP server
type Server struct {
	logger *zap.Logger
	sim    *treasury.Simulator
	runs   Runs // nil without archive
}

// NewServer creates a new HTTP server
func NewServer(logger *zap.Logger, sim *treasury.Simulator, runs Runs) *Server {
	return &Server{logger: logger, sim: sim, runs: runs}
}

// Router creates a new HTTP router
func (s *Server) Router() *gin.Engine {
	treasury.RegisterMetrics()

	router := gin.New()
	router.Use(ginzap.Ginzap(s.logger, time.RFC3339, true))
	router.Use(ginzap.RecoveryWithZap(s.logger, true))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/scenarios", s.handleGetScenarios)
		api.POST("/simulate", s.handleSimulate)
		api.GET("/calibration", s.handleGetCalibration)
		api.GET("/nav", s.handleGetNAV)
		api.GET("/runs", s.handleGetRuns)
		api.GET("/runs/:id", s.handleGetRun)
	}
	return router
}

func (s *Server) handleGetScenarios(c *gin.Context) {
	c.JSON(http.StatusOK, s.sim.Catalog.Scenarios())
}

func (s *Server) handleSimulate(c *gin.Context) {
	var req treasury.SimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := s.sim.Simulate(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleGetCalibration(c *gin.Context) {
	on, err := s.day(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	lookback := treasury.DefaultLookback
	if v := c.Query("lookback"); v != "" {
		if lookback, err = strconv.Atoi(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lookback: " + err.Error()})
			return
		}
	}
	cal, err := montecarlo.EstimateBetaParameters(s.sim.Book.Observations(date.Date{}, on), lookback)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cal)
}

func (s *Server) handleGetNAV(c *gin.Context) {
	on, err := s.day(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	nav, err := s.sim.Book.ComputeNAV(on)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nav.Snapshot())
}

func (s *Server) handleGetRuns(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run archive"})
		return
	}
	limit := DefaultRunsLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	runs, err := s.runs.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, runs)
}

func (s *Server) handleGetRun(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run archive"})
		return
	}
	run, err := s.runs.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// day reads the "on" query parameter, the latest base asset close by default.
func (s *Server) day(c *gin.Context) (date.Date, error) {
	if v := c.Query("on"); v != "" {
		return date.Parse(v)
	}
	b := s.sim.Book
	if !b.Market.Has(b.BaseTicker) {
		return date.Date{}, errors.New("no " + b.BaseTicker + " price")
	}
	on, _ := b.Market.Prices(b.BaseTicker).Latest()
	return on, nil
}

// fail writes err with the status it deserves.
func (s *Server) fail(c *gin.Context, err error) {
	code := StatusOf(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

// StatusOf maps an error of the simulator or the archive to an HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, montecarlo.ErrUnknownScenario),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, treasury.ErrNoData):
		return http.StatusNotFound
	case treasury.IsInvalidRequest(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
