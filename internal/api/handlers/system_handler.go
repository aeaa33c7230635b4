package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/services"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/version"
)

// StatsSource reports store counters. *services.HoneypotStore satisfies it.
type StatsSource interface {
	Stats(ctx context.Context) (services.Stats, error)
}

// Endpoints is the public endpoint map advertised by the banner and 404 body.
var Endpoints = map[string]string{
	"api_info":        "/",
	"status":          "/api/status",
	"tables":          "/api/tables",
	"alerts":          "/api/alerts",
	"login":           "/api/login",
	"query":           "/api/query",
	"block_ip":        "/api/actions/block",
	"generate_decoys": "/api/decoy/generate",
	"export_report":   "/api/export_report",
	"download":        "/download/<filename>",
}

// SystemHandler serves the service banner, status and error bodies.
type SystemHandler struct {
	stats StatsSource
}

func NewSystemHandler(stats StatsSource) *SystemHandler {
	return &SystemHandler{stats: stats}
}

func nowISO() string { return time.Now().UTC().Format(time.RFC3339) }

// Root returns the API banner.
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   version.Service,
		"version":   version.Version,
		"endpoints": Endpoints,
		"timestamp": nowISO(),
	})
}

// Status reports store health. Failure detail stays in the server log.
func (h *SystemHandler) Status(c *gin.Context) {
	st, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		GetLogger(c).WithError(err).Error("status check failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "unhealthy",
			"database":  "error",
			"timestamp": nowISO(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "connected",
		"stats":     st,
		"timestamp": nowISO(),
	})
}

// NotFound is the JSON 404 for unknown routes.
func NotFound(c *gin.Context) {
	paths := make([]string, 0, len(Endpoints))
	for _, p := range Endpoints {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	c.JSON(http.StatusNotFound, gin.H{
		"status":              "error",
		"error":               "Not Found",
		"message":             "The requested resource was not found on this server.",
		"available_endpoints": paths,
	})
}

func notFound(c *gin.Context) { NotFound(c) }
