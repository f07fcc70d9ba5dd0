package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports whether the service and its database are up.
type HealthHandler struct {
	service string
	ping    func(ctx context.Context) error
}

// NewHealthHandler creates a health handler. ping may be nil.
func NewHealthHandler(service string, ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{service: service, ping: ping}
}

// Check handles GET /health
func (h *HealthHandler) Check(c *gin.Context) {
	body := gin.H{"status": "ok", "service": h.service, "database": "ok"}
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			body["status"] = "degraded"
			body["database"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}
