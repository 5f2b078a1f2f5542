package handler

import (
	"net/http"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	svc service.DashboardService
	now func() time.Time
}

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc, now: time.Now}
}

// Get godoc
// @Summary      Dashboard financiero del mes
// @Description  Ingresos del mes actual y anterior, variación porcentual, gastos, costo de ventas, utilidad neta, top 5 productos y alertas de stock crítico.
// @Tags         finanzas
// @Produce      json
// @Success      200 {object} dto.DashboardStats
// @Router       /v1/finance/dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	stats, err := h.svc.ComputeDashboard(c.Request.Context(), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
