package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bawantha395/tcms-app-sub004/internal/dto"
	"github.com/bawantha395/tcms-app-sub004/pkg/dateonly"
	appErrors "github.com/bawantha395/tcms-app-sub004/pkg/errors"
	"github.com/bawantha395/tcms-app-sub004/pkg/response"
)

type dashboardService interface {
	Payments(ctx context.Context, date dateonly.Date) (*dto.PaymentsDashboardResponse, bool, error)
}

// DashboardHandler exposes counter dashboard summaries.
type DashboardHandler struct {
	dashboard dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard dashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Payments godoc
// @Summary Payments dashboard for a day
// @Tags Dashboard
// @Produce json
// @Param date query string true "Summary date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /dashboard/payments [get]
func (h *DashboardHandler) Payments(c *gin.Context) {
	date, err := dateonly.Parse(c.Query("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD"))
		return
	}

	summary, cached, err := h.dashboard.Payments(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summary, nil, map[string]interface{}{"cache_hit": cached})
}
