package api

import (
	"net/http"
	"strconv"
	"time"

	"sales-notifier/internal/service"
	"sales-notifier/internal/util"
	"sales-notifier/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	balances  *service.BalanceService
	reminders *service.ReminderService
	ingest    *worker.IngestWorker
}

// NewHandler creates a new HTTP handler
func NewHandler(
	balances *service.BalanceService,
	reminders *service.ReminderService,
	ingest *worker.IngestWorker,
) *Handler {
	return &Handler{
		balances:  balances,
		reminders: reminders,
		ingest:    ingest,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/customers/:id/balance", h.getBalance)
		v1.GET("/ingest/status", h.getIngestStatus)
		v1.POST("/reminders/run", h.runReminders)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// getBalance returns the computed balance for a customer
func (h *Handler) getBalance(c *gin.Context) {
	idStr := c.Param("id")
	customerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid customer ID",
		})
		return
	}

	summary, err := h.balances.Compute(c.Request.Context(), customerID, service.Exclusion{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to compute balance",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// getIngestStatus reports the ingestion mode and cursor positions
func (h *Handler) getIngestStatus(c *gin.Context) {
	mode, cursors := h.ingest.Status()
	c.JSON(http.StatusOK, gin.H{
		"mode":    mode.String(),
		"cursors": cursors,
	})
}

// runReminders triggers one reminder batch outside the schedule
func (h *Handler) runReminders(c *gin.Context) {
	sent, err := h.reminders.SendDebtReminders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to run reminders",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reminders_sent": sent,
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
