package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/absa/internal/core"
	"github.com/agenthands/absa/internal/core/extraction"
	"github.com/agenthands/absa/internal/core/model"
	"github.com/agenthands/absa/internal/store"
)

type Server struct {
	Engine *core.Engine
	// Store is optional; requests asking to save fail when it is nil.
	Store  *store.Store
	Logger *zap.Logger
}

func NewServer(engine *core.Engine, st *store.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Engine: engine,
		Store:  st,
		Logger: logger,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.Logger))

	r.GET("/healthz", s.Health)
	r.POST("/window", s.Window)
	r.POST("/dataset", s.Dataset)
	r.POST("/evaluate", s.Evaluate)
	r.GET("/runs/:id", s.Run)

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type WindowRequest struct {
	Text string `json:"text"`
	From int    `json:"from"`
	To   int    `json:"to"`
	// WindowSize overrides the configured size when set.
	WindowSize *int `json:"window_size"`
}

func (s *Server) Window(c *gin.Context) {
	var req WindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ex := s.Engine.Extractor
	if req.WindowSize != nil {
		ex = ex.WithWindowSize(*req.WindowSize)
	}
	w, err := ex.ExtractWindow(req.Text, req.From, req.To)
	if err != nil {
		if errors.Is(err, extraction.ErrMalformedSpan) || errors.Is(err, extraction.ErrNegativeWindow) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s.Logger.Error("failed to extract window", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract window"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"kind":    w.Kind.String(),
		"aligned": w.Aligned(),
		"window":  w.Text,
		"tokens":  w.Tokens,
	})
}

type DatasetRequest struct {
	GroupID     string                 `json:"group_id"`
	Records     []model.SentenceRecord `json:"records"`
	ExportGraph bool                   `json:"export_graph"`
	Save        bool                   `json:"save"`
}

func (s *Server) Dataset(c *gin.Context) {
	var req DatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if (req.ExportGraph || req.Save) && req.GroupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group_id is required to export or save"})
		return
	}

	rows, stats := s.Engine.BuildDataset(req.Records)
	ctx := c.Request.Context()

	if req.ExportGraph {
		if _, err := s.Engine.ExportDataset(ctx, req.GroupID, rows); err != nil {
			s.Logger.Error("failed to export dataset", zap.String("group_id", req.GroupID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export dataset"})
			return
		}
	}
	if req.Save {
		if s.Store == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No store configured"})
			return
		}
		if err := s.Store.SaveDataset(ctx, req.GroupID, rows); err != nil {
			s.Logger.Error("failed to save dataset", zap.String("group_id", req.GroupID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save dataset"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows, "stats": stats})
}

type EvaluateRequest struct {
	Gold        []model.GoldSentence     `json:"gold"`
	Predictions []model.PredictionRecord `json:"predictions"`
	ExportGraph bool                     `json:"export_graph"`
	Save        bool                     `json:"save"`
}

func (s *Server) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	report := s.Engine.Evaluate(req.Gold, req.Predictions)
	ctx := c.Request.Context()

	if req.ExportGraph {
		if err := s.Engine.ExportReport(ctx, report); err != nil {
			s.Logger.Error("failed to export report", zap.String("run_id", report.RunID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export report"})
			return
		}
	}
	if req.Save {
		if s.Store == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No store configured"})
			return
		}
		if err := s.Store.SaveReport(ctx, report); err != nil {
			s.Logger.Error("failed to save report", zap.String("run_id", report.RunID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save report"})
			return
		}
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) Run(c *gin.Context) {
	if s.Store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No store configured"})
		return
	}

	report, err := s.Store.LoadReport(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}
	if err != nil {
		s.Logger.Error("failed to load report", zap.String("run_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load run"})
		return
	}
	c.JSON(http.StatusOK, report)
}
