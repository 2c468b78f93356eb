package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/health"
	"github.com/drivelane/drivelane/internal/types"
)

// StatusReporter is implemented by background workers that expose their state.
type StatusReporter interface {
	GetStatus(ctx context.Context) map[string]interface{}
}

type HealthHandler struct {
	db        *gorm.DB
	probe     types.DatabaseConfig
	scheduler StatusReporter
}

func NewHealthHandler(db *gorm.DB, probe types.DatabaseConfig, scheduler StatusReporter) *HealthHandler {
	return &HealthHandler{db: db, probe: probe, scheduler: scheduler}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"status":    "ok",
		"message":   "Drivelane is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Ready checks the application pool and, when configured, a fresh raw connection.
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	ready := true

	if sqlDB, err := h.db.DB(); err != nil {
		checks["pool"] = err.Error()
		ready = false
	} else if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		checks["pool"] = err.Error()
		ready = false
	} else {
		checks["pool"] = "ok"
	}

	if h.probe.DSN != "" {
		if err := health.CheckDatabase(c.Request.Context(), h.probe); err != nil {
			checks["database"] = err.Error()
			ready = false
		} else {
			checks["database"] = "ok"
		}
	}

	if h.scheduler != nil {
		checks["notification_retry"] = h.scheduler.GetStatus(c.Request.Context())
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"success":   ready,
		"checks":    checks,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
