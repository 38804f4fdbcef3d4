// Package api exposes the audit engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/page-audit/auditor/internal/analysis"
	"github.com/page-audit/auditor/internal/audit"
	"github.com/page-audit/auditor/internal/config"
	"github.com/page-audit/auditor/internal/fetch"
	"github.com/page-audit/auditor/internal/report"
	"github.com/page-audit/auditor/internal/storage"
)

// Server routes HTTP requests to the audit engine and report store.
type Server struct {
	cfg      *config.Config
	engine   *audit.Engine
	acquirer fetch.Acquirer
	store    *storage.Store
	log      *slog.Logger
	router   *gin.Engine
}

// NewServer wires the HTTP surface. store may be nil to run without report
// history.
func NewServer(cfg *config.Config, engine *audit.Engine, acquirer fetch.Acquirer, store *storage.Store, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), metricsMiddleware(), corsMiddleware())

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		acquirer: acquirer,
		store:    store,
		log:      log,
		router:   router,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/api/health", s.handleHealth)

	apiGroup := s.router.Group("/api")
	apiGroup.Use(rateLimitMiddleware(s.cfg.RateLimit, s.cfg.RateBurst))
	apiGroup.POST("/analyze", s.handleAnalyze)
	apiGroup.GET("/report/:id", s.handleGetReport)
	apiGroup.GET("/reports", s.handleListReports)
}

// Handler returns the root http.Handler, for serving and for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.cfg.Port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "port", s.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type analyzeRequest struct {
	URL     string                  `json:"url" binding:"required"`
	Options *config.AnalysisOptions `json:"options"`
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	opts := config.DefaultAnalysisOptions()
	if req.Options != nil {
		opts = *req.Options
	}

	snap, err := s.acquirer.Acquire(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("failed to acquire %s: %v", req.URL, err)})
		return
	}

	result, err := s.engine.Audit(c.Request.Context(), snap, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analysis.ErrBusy) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	rep := report.New(req.URL, result.Analysis, result.Score, result.Issues)
	if s.store != nil {
		if err := s.store.SaveReport(c.Request.Context(), rep); err != nil {
			s.log.Error("failed to persist report", "report_id", rep.ID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"report":    rep,
		"cache_hit": result.CacheHit,
	})
}

func (s *Server) handleGetReport(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report history disabled"})
		return
	}

	rep, err := s.store.GetReport(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, rep)
	case "csv":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=report-%s.csv", rep.ID))
		c.Header("Content-Type", "text/csv; charset=utf-8")
		if err := report.ExportCSV(c.Writer, rep); err != nil {
			s.log.Error("csv export failed", "report_id", rep.ID, "error", err)
		}
	case "xlsx":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=report-%s.xlsx", rep.ID))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := report.ExportXLSX(c.Writer, rep); err != nil {
			s.log.Error("xlsx export failed", "report_id", rep.ID, "error", err)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown format, want json, csv or xlsx"})
	}
}

func (s *Server) handleListReports(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"reports": []storage.Summary{}})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &limit); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
	}

	summaries, err := s.store.ListReports(c.Request.Context(), c.Query("url"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if summaries == nil {
		summaries = []storage.Summary{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": summaries})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"cache":  s.engine.CacheStats(),
	})
}
