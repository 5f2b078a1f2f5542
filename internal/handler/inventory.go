package handler

import (
	"net/http"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// ListMovements godoc
// @Summary      Movimientos de stock
// @Description  Auditoría de cada cambio de stock (ventas, ventas eliminadas, ajustes), más recientes primero.
// @Tags         inventario
// @Produce      json
// @Param        product   query string false "UUID del producto"
// @Param        type      query string false "sale | sale_deleted | adjustment"
// @Param        page      query int    false "Página"
// @Param        page_size query int    false "Tamaño de página"
// @Success      200 {object} dto.StockMovementListResponse
// @Router       /v1/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CriticalStock GET /v1/inventory/alerts
func (h *InventoryHandler) CriticalStock(c *gin.Context) {
	resp, err := h.svc.CriticalStockAlerts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
