package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bvbrcdata/src/internal/tools"
)

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	RatePerMinute int
	Burst         int
	MaxBody       int64
}

// Router builds the gin engine: JSON-RPC on POST /mcp plus a small REST
// surface for health, metrics, the catalog and direct tool calls.
func (s *Server) Router(cfg HTTPConfig) *gin.Engine {
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = maxMessage
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(MetricsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "server": ServerName, "version": s.version})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := router.Group("")
	limited.Use(RateLimitMiddleware(cfg.RatePerMinute, cfg.Burst))
	limited.POST("/mcp", s.handleRPC(cfg.MaxBody))

	api := limited.Group("/api")
	api.GET("/collections", s.listCollections)
	api.GET("/collections/:name", s.getCollection)
	api.POST("/tools/:name", s.callTool)
	return router
}

func (s *Server) handleRPC(maxBody int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if int64(len(body)) > maxBody {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request too large"})
			return
		}
		out := s.HandleMessage(c.Request.Context(), body)
		if out == nil {
			c.Status(http.StatusAccepted)
			return
		}
		c.Data(http.StatusOK, "application/json", out)
	}
}

type collectionSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Family      string `json:"family"`
	Key         string `json:"key"`
	Accessors   int    `json:"accessors"`
}

func (s *Server) listCollections(c *gin.Context) {
	cat := s.reg.Catalog()
	out := make([]collectionSummary, 0, len(cat.Collections))
	for _, name := range cat.Names() {
		col, _ := cat.Lookup(name)
		out = append(out, collectionSummary{
			Name:        col.Name,
			Description: col.Description,
			Family:      string(col.Family),
			Key:         col.Key,
			Accessors:   len(col.Accessors),
		})
	}
	c.JSON(http.StatusOK, gin.H{"collections": out})
}

func (s *Server) getCollection(c *gin.Context) {
	col, err := s.reg.Catalog().Lookup(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	accessors := make([]gin.H, 0, len(col.Accessors))
	for _, a := range col.Accessors {
		accessors = append(accessors, gin.H{
			"name":  a.Name,
			"match": a.Match,
			"type":  a.ValueType(),
			"args":  a.Params(),
			"tool":  tools.ByName(col.Name, a.Name),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"name":        col.Name,
		"description": col.Description,
		"family":      col.Family,
		"key":         col.Key,
		"accessors":   accessors,
	})
}

func (s *Server) callTool(c *gin.Context) {
	args := map[string]any{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&args); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON arguments: " + err.Error()})
			return
		}
	}
	res, err := s.reg.Call(c.Request.Context(), c.Param("name"), args)
	if errors.Is(err, tools.ErrUnknownTool) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": res.Text, "isError": res.IsError})
}

// ListenAndServe runs the HTTP transport until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, cfg HTTPConfig) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("mcp http transport listening", "addr", addr, "server", ServerName)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mcp http: %w", err)
	case <-ctx.Done():
		s.logger.Info("mcp http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
