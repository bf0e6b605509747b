package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/rolodex/internal/cache"
	"github.com/agenthands/rolodex/internal/extraction"
	"github.com/agenthands/rolodex/internal/model"
)

// Server wires the extraction orchestrator to HTTP. All dependencies
// are constructed at process start and passed in.
type Server struct {
	extractor  *extraction.Extractor
	store      *cache.Store // nil when caching is disabled
	collection string
	logger     *zap.Logger
}

func New(extractor *extraction.Extractor, store *cache.Store, collection string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{extractor: extractor, store: store, collection: collection, logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", s.Root)
	r.GET("/health", s.Health)
	r.GET("/stats", s.Stats)
	r.POST("/extract", s.Extract)

	return r
}

type ExtractionRequest struct {
	Text     string `json:"text" binding:"required"`
	UseCache *bool  `json:"use_cache"`
}

type ExtractionResponse struct {
	Success        bool                    `json:"success"`
	Status         string                  `json:"status"`
	Data           *model.ExtractedContact `json:"data"`
	Error          string                  `json:"error,omitempty"`
	ProcessingTime float64                 `json:"processing_time"`
	CacheHit       bool                    `json:"cache_hit"`
}

func (s *Server) Extract(c *gin.Context) {
	start := time.Now()

	var req ExtractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: text is required"})
		return
	}
	// The text reaches the orchestrator verbatim: raw_text on the record
	// and the cache key must both be the original input, not a cleaned-up
	// variant of it.
	text := req.Text
	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: text is required"})
		return
	}
	useCache := true
	if req.UseCache != nil {
		useCache = *req.UseCache
	}

	result, err := s.extractor.Extract(c.Request.Context(), text, useCache)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		switch {
		case errors.Is(err, extraction.ErrModelUnavailable):
			c.JSON(http.StatusOK, ExtractionResponse{
				Success:        false,
				Status:         "error",
				Error:          "Generative model is not running. Start it and try again.",
				ProcessingTime: elapsed,
			})
		case errors.Is(err, extraction.ErrNoExtraction):
			// The mechanism ran and produced nothing parseable; to the
			// caller that is an empty result, not a server fault.
			s.logger.Warn("extraction produced nothing", zap.Error(err))
			c.JSON(http.StatusOK, ExtractionResponse{
				Success:        true,
				Status:         "not_found",
				ProcessingTime: elapsed,
			})
		default:
			s.logger.Error("extraction failed", zap.Error(err))
			c.JSON(http.StatusOK, ExtractionResponse{
				Success:        false,
				Status:         "error",
				Error:          err.Error(),
				ProcessingTime: elapsed,
			})
		}
		return
	}

	status := "not_found"
	var data *model.ExtractedContact
	if result.Contact.HasData() {
		status = "found"
		data = result.Contact
	}
	c.JSON(http.StatusOK, ExtractionResponse{
		Success:        true,
		Status:         status,
		Data:           data,
		ProcessingTime: elapsed,
		CacheHit:       result.CacheHit,
	})
}

type HealthResponse struct {
	Status      string    `json:"status"`
	ModelStatus string    `json:"model_status"`
	CacheStatus string    `json:"cache_status"`
	Timestamp   time.Time `json:"timestamp"`
}

func (s *Server) Health(c *gin.Context) {
	modelStatus := "unhealthy"
	if s.extractor.ModelAvailable(c.Request.Context()) {
		modelStatus = "healthy"
	}
	cacheStatus := "disabled"
	if s.store != nil {
		cacheStatus = "unhealthy"
		if s.store.Healthy() {
			cacheStatus = "healthy"
		}
	}
	overall := "degraded"
	if modelStatus == "healthy" && cacheStatus != "unhealthy" {
		overall = "healthy"
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:      overall,
		ModelStatus: modelStatus,
		CacheStatus: cacheStatus,
		Timestamp:   time.Now(),
	})
}

func (s *Server) Stats(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "stats": gin.H{"total_extractions": 0, "caching": "disabled"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"total_extractions": s.store.Count(),
			"collection_name":   s.collection,
		},
	})
}

func (s *Server) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Rolodex contact extraction API",
		"version": "1.0.0",
	})
}
