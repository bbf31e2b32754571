// Package api exposes the scorer over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"context-cvss4/cvss"
	"context-cvss4/internal/batch"
	"context-cvss4/internal/flags"
)

// maxBatch caps the vectors accepted by one POST /v1/score request.
const maxBatch = 1000

// Server holds the handler dependencies.
type Server struct {
	Workers int
	// Defaults are layered under the metrics of every /v1/apply request.
	Defaults cvss.MetricsOptions
}

type scoreResponse struct {
	cvss.Result
	Skipped        []string `json:"skipped,omitempty"`
	ReferenceScore *float64 `json:"referenceScore,omitempty"`
}

type batchRequest struct {
	Vectors []string `json:"vectors" binding:"required"`
	Strict  bool     `json:"strict"`
}

type applyRequest struct {
	Vector  string              `json:"vector" binding:"required"`
	Metrics cvss.MetricsOptions `json:"metrics"`
}

// Router builds the gin engine serving s.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	v1 := r.Group("/v1")
	v1.GET("/score", s.handleScore)
	v1.POST("/score", s.handleBatch)
	v1.POST("/apply", s.handleApply)
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logrus.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("request")
	}
}

func (s *Server) handleScore(c *gin.Context) {
	vector := c.Query("vector")
	if vector == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vector query parameter is required"})
		return
	}
	if c.Query("strict") == "true" {
		if err := cvss.Validate(vector); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	respondScore(c, vector)
}

func (s *Server) handleBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Vectors) > maxBatch {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too many vectors"})
		return
	}
	items, err := batch.ScoreAll(c.Request.Context(), req.Vectors, batch.Options{Workers: s.Workers, Strict: req.Strict})
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleApply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tailored, err := cvss.ApplyMetrics(req.Vector, flags.Merge(s.Defaults, req.Metrics))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	respondScore(c, tailored)
}

// respondScore scores whatever the permissive parser can read and reports
// the rest as skipped.
func respondScore(c *gin.Context, vector string) {
	v := cvss.ParseVector(vector)
	res, err := v.Score()
	if err != nil {
		logrus.Errorf("Scoring %q: %v", vector, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := scoreResponse{Result: res, Skipped: v.Skipped()}
	if ref, err := cvss.ReferenceScore(vector); err == nil {
		out.ReferenceScore = &ref
	}
	c.JSON(http.StatusOK, out)
}
