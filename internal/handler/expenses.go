package handler

import (
	"net/http"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/service"

	"github.com/gin-gonic/gin"
)

type ExpensesHandler struct {
	svc   service.ExpenseService
	media MediaStore
}

func NewExpensesHandler(svc service.ExpenseService, media MediaStore) *ExpensesHandler {
	return &ExpensesHandler{svc: svc, media: media}
}

// Create godoc
// @Summary      Registrar gasto
// @Tags         finanzas
// @Accept       json
// @Produce      json
// @Param        body body dto.CreateExpenseRequest true "Gasto"
// @Success      201 {object} dto.ExpenseResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/finance/expenses [post]
func (h *ExpensesHandler) Create(c *gin.Context) {
	var req dto.CreateExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      Listar gastos
// @Tags         finanzas
// @Produce      json
// @Param        category   query string false "MARKETING | LOGISTICS | OPERATIONS | INVENTORY | UTILITIES | OTHER"
// @Param        start_date query string false "YYYY-MM-DD"
// @Param        end_date   query string false "YYYY-MM-DD"
// @Success      200 {object} dto.ExpenseListResponse
// @Router       /v1/finance/expenses [get]
func (h *ExpensesHandler) List(c *gin.Context) {
	var filter dto.ExpenseFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExpensesHandler) Export(c *gin.Context) {
	var filter dto.ExpenseFilter
	if !bindQuery(c, &filter) {
		return
	}
	rows, err := h.svc.Export(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	writeCSV(c, "gastos", rows)
}

func (h *ExpensesHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExpensesHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateExpenseRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ExpensesHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	receipt, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if receipt != nil {
		h.media.Delete(*receipt)
	}
	c.Status(http.StatusNoContent)
}

// UploadReceipt POST /v1/finance/expenses/:id/receipt (multipart, field "receipt")
func (h *ExpensesHandler) UploadReceipt(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	rel, ok := saveUpload(c, h.media, "receipt", "receipts")
	if !ok {
		return
	}
	resp, previous, err := h.svc.AttachReceipt(c.Request.Context(), id, rel)
	replaceUpload(h.media, rel, previous, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
