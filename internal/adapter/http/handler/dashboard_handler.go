package handler

import (
	"digital-wallet/internal/adapter/http/dto"
	"digital-wallet/internal/core/ports"
	"digital-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// DashboardHandler handles reporting endpoints.
type DashboardHandler struct {
	querySvc ports.QueryService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(querySvc ports.QueryService) *DashboardHandler {
	return &DashboardHandler{querySvc: querySvc}
}

// GetStats handles GET /api/v1/dashboard/stats?period=day|week|month|all.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	period := c.DefaultQuery("period", "all")
	stats, err := h.querySvc.GetDashboardStats(c.Request.Context(), userID, period)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.NewDashboardStatsResponse(period, stats))
}
