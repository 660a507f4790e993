// internal/handlers/health.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/casaprime/realty-backend/internal/i18n"
	"github.com/casaprime/realty-backend/internal/services"
)

type HealthHandler struct {
	db       *gorm.DB
	workflow *services.Workflow
	version  string
}

func NewHealthHandler(db *gorm.DB, workflow *services.Workflow, version string) *HealthHandler {
	return &HealthHandler{
		db:       db,
		workflow: workflow,
		version:  version,
	}
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	database := "up"
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		database = "down"
	}

	status := http.StatusOK
	state := "healthy"
	if database != "up" {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}

	c.JSON(status, gin.H{
		"status":          state,
		"version":         h.version,
		"database":        database,
		"status_workflow": h.workflow.Name(),
		"languages":       i18n.GetSupportedLanguages(),
	})
}
