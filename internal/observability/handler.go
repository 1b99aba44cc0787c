package observability

import (
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ice-lfernandes/spring-boot-arconia/internal/logger"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/metrics"
	"github.com/ice-lfernandes/spring-boot-arconia/internal/middleware"
)

// Handler serves demo endpoints that record custom metrics on request.
type Handler struct {
	sample func() float64
}

func NewHandler() *Handler {
	return &Handler{
		sample: func() float64 { return rand.Float64() * 100 },
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/api/observability")

	g.GET("/metrics", h.recordMetrics)
	g.GET("/combined", h.combined)
}

func (h *Handler) recordMetrics(c *gin.Context) {
	logger.Info("metrics endpoint called", nil)

	metrics.RecordAPIRequest("metrics", "counter")
	metrics.SetAPIGauge(h.sample())

	c.String(http.StatusOK, "Hello from Metrics! Counter and gauge recorded.")
}

func (h *Handler) combined(c *gin.Context) {
	logger.Info("combined observability endpoint called", map[string]any{
		"trace_id": middleware.TraceID(c),
	})

	metrics.RecordAPIRequest("combined", "combined")

	logger.Info("executing combined observability logic", nil)
	c.String(http.StatusOK, "Hello from Combined Observability! Metrics and logs recorded.")
}
