package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vyrodovalexey/avaprobe/internal/observability"
)

// Handler serves the probe endpoints.
type Handler struct {
	aggregator *Aggregator
	logger     observability.Logger
}

// NewHandler creates a new health handler.
func NewHandler(aggregator *Aggregator, logger observability.Logger) *Handler {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Handler{
		aggregator: aggregator,
		logger:     logger,
	}
}

// LiveHandler returns the liveness handler.
func (h *Handler) LiveHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, h.aggregator.Live())
	}
}

// ReadyHandler returns the readiness handler. It answers 503 when the
// database probe fails.
func (h *Handler) ReadyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := h.aggregator.Ready(c.Request.Context())
		statusCode := http.StatusOK
		if !report.Ready() {
			statusCode = http.StatusServiceUnavailable
		}
		c.JSON(statusCode, report)
	}
}

// StartupHandler returns the startup handler.
func (h *Handler) StartupHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.aggregator.Startup())
	}
}

// ReportHandler returns the token-gated detailed report handler.
func (h *Handler) ReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := h.aggregator.Report(c.Request.Context(), c.GetHeader(HeaderHealthToken))
		if err != nil {
			h.logger.WithContext(c.Request.Context()).Warn("health report rejected",
				observability.String("client_ip", c.ClientIP()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

// RegisterRoutes mounts the probe endpoints on a route group. Extra
// handlers run in front of the report endpoint only.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup, reportMiddleware ...gin.HandlerFunc) {
	group.GET("/live", h.LiveHandler())
	group.GET("/ready", h.ReadyHandler())
	group.GET("/startup", h.StartupHandler())

	report := append(append([]gin.HandlerFunc{}, reportMiddleware...), h.ReportHandler())
	group.GET("/report", report...)
}
