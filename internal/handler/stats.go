package handler

import (
	"net/http"

	"spotted-backend/internal/stats"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsHandler interface {
	GetStats(c *gin.Context)
}

type statsHandler struct {
	aggregator *stats.Aggregator
	logger     *zap.Logger
}

func NewStatsHandler(aggregator *stats.Aggregator, logger *zap.Logger) StatsHandler {
	return &statsHandler{aggregator: aggregator, logger: logger}
}

// GetStats handles GET /api/stats: the moderation dashboard counters plus
// the option list endpoints the dashboard links to.
func (h *statsHandler) GetStats(c *gin.Context) {
	snap, err := h.aggregator.Snapshot()
	if err != nil {
		h.logger.Error("Failed to aggregate stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"endpoints": gin.H{
			"reject_options":       "/api/options/reject",
			"my_delete_options":    "/api/options/my-delete",
			"forme_delete_options": "/api/options/forme-delete",
		},
		"spotteds": snap,
	})
}
