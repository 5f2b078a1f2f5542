package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gocarina/gocsv"
)

type SalesHandler struct {
	svc      service.SaleService
	receipts service.ReceiptService
}

func NewSalesHandler(svc service.SaleService, receipts service.ReceiptService) *SalesHandler {
	return &SalesHandler{svc: svc, receipts: receipts}
}

// Record godoc
// @Summary      Registrar una venta
// @Description  Descuenta stock en la misma transacción, con bloqueo de fila sobre el producto. El total siempre se recalcula como cantidad × precio unitario.
// @Tags         finanzas
// @Accept       json
// @Produce      json
// @Param        body body dto.RecordSaleRequest true "Venta"
// @Success      201 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.InsufficientStockError
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/finance/sales [post]
func (h *SalesHandler) Record(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      Listar ventas
// @Tags         finanzas
// @Produce      json
// @Param        product    query string false "UUID del producto"
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date   query string false "YYYY-MM-DD"
// @Param        page       query int    false "Página"
// @Param        page_size  query int    false "Tamaño de página"
// @Success      200 {object} dto.SaleListResponse
// @Router       /v1/finance/sales [get]
func (h *SalesHandler) List(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Export GET /v1/finance/sales/export (same filters as List, CSV body)
func (h *SalesHandler) Export(c *gin.Context) {
	var filter dto.SaleFilter
	if !bindQuery(c, &filter) {
		return
	}
	rows, err := h.svc.ExportSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	writeCSV(c, "ventas", rows)
}

func (h *SalesHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Editar venta
// @Description  Puede cambiar precio, costo, fecha, cliente y notas. Producto y cantidad no se editan; elimine y registre de nuevo.
// @Tags         finanzas
// @Accept       json
// @Produce      json
// @Param        id   path string                true "UUID de la venta"
// @Param        body body dto.UpdateSaleRequest true "Cambios"
// @Success      200 {object} dto.SaleResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/finance/sales/{id} [put]
func (h *SalesHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateSale(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete DELETE /v1/finance/sales/:id. The sold units go back to stock.
func (h *SalesHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteSale(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Receipt godoc
// @Summary      Recibo PDF de la venta
// @Tags         finanzas
// @Produce      application/pdf
// @Param        id path string true "UUID de la venta"
// @Success      200 {file} file
// @Failure      404 {object} apierror.APIError
// @Router       /v1/finance/sales/{id}/receipt [get]
func (h *SalesHandler) Receipt(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := h.receipts.Render(c.Request.Context(), id, &buf); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="recibo_%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// EmailReceipt POST /v1/finance/sales/:id/receipt/email. Delivery is asynchronous.
func (h *SalesHandler) EmailReceipt(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.EmailReceiptRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.receipts.Email(c.Request.Context(), id, req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"detail": "Recibo encolado para envío a " + req.Email})
}

// writeCSV renders rows with gocsv as an attachment named <prefix>_<date>.csv.
func writeCSV(c *gin.Context, prefix string, rows interface{}) {
	body, err := gocsv.MarshalBytes(rows)
	if err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("%s_%s.csv", prefix, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}
