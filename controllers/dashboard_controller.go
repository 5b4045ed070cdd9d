package controllers

import (
	"net/http"

	"shopwave/models"
	"shopwave/services"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	Dashboard *services.DashboardService
}

func NewDashboardController(dashboard *services.DashboardService) *DashboardController {
	return &DashboardController{Dashboard: dashboard}
}

// @Summary Dashboard statistics (Admin)
// @Tags Admin - Dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.DashboardStats}
// @Router /admin/stats [get]
func (ctrl *DashboardController) GetStats(c *gin.Context) {
	stats, err := ctrl.Dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, "Failed to load statistics", err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Statistics retrieved", Data: stats})
}
