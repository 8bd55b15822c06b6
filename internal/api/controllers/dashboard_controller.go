package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"tweettocourse/internal/models/response_models"
	"tweettocourse/internal/services"
	"tweettocourse/pkg/utils"
)

type DashboardController struct {
	dashboardService services.DashboardService
}

func NewDashboardController(dashboardService services.DashboardService) *DashboardController {
	return &DashboardController{
		dashboardService: dashboardService,
	}
}

// GetDashboard godoc
// @Summary Business dashboard
// @Description KPIs, revenue and signup series, plan mix, top thread authors and recent payments
// @Tags Dashboard
// @Produce json
// @Param start query string false "Range start (RFC3339)"
// @Param end query string false "Range end (RFC3339)"
// @Param interval query string false "Bucket interval: day | week | month"
// @Param timezone query string false "IANA timezone for bucketing"
// @Param currency query string false "Display currency (default USD)"
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /admin/dashboard [get]
func (d *DashboardController) GetDashboard(c *gin.Context) {
	var rng response_models.TimeRange

	if raw := c.Query("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid start time, expected RFC3339")
			return
		}
		rng.Start = t
	}
	if raw := c.Query("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid end time, expected RFC3339")
			return
		}
		rng.End = t
	}
	rng.Interval = c.DefaultQuery("interval", "day")
	rng.Timezone = c.Query("timezone")

	switch rng.Interval {
	case "day", "week", "month":
	default:
		utils.RespondError(c, http.StatusBadRequest, "Invalid interval, expected day, week or month")
		return
	}

	report, err := d.dashboardService.BuildDashboard(c.Request.Context(), rng, c.Query("currency"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, report, "Dashboard built successfully")
}
