package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// dashboardStats serves the aggregates the admin dashboard polls between
// stream events: today's workload, revenue and best sellers.
func (s *Server) dashboardStats(c *gin.Context) {
	stats, err := s.deps.Dashboard.DashboardStats(c.Request.Context())
	if err != nil {
		s.logger.Error("dashboard stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
