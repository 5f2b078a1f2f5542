package handler

import (
	"net/http"
	"strconv"

	"github.com/Renatopaccha/Dental-Gest/internal/apierror"
	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductsHandler struct {
	svc       service.ProductService
	inventory service.InventoryService
	media     MediaStore
}

func NewProductsHandler(svc service.ProductService, inventory service.InventoryService, media MediaStore) *ProductsHandler {
	return &ProductsHandler{svc: svc, inventory: inventory, media: media}
}

// List godoc
// @Summary      Listar productos
// @Description  Catálogo paginado con filtros por categoría, marca, precio actual, stock, público y texto.
// @Tags         catalogo
// @Produce      json
// @Param        category  query string false "Slug o UUID de la categoría"
// @Param        brand     query string false "Slug o UUID de la marca"
// @Param        min_price query number false "Precio actual mínimo"
// @Param        max_price query number false "Precio actual máximo"
// @Param        in_stock  query bool   false "Solo con stock"
// @Param        audience  query string false "STUDENT | PROFESSIONAL | GENERAL"
// @Param        search    query string false "Busca en nombre y descripción"
// @Param        ordering  query string false "price, -price, created_at, -created_at, stock_count, -stock_count, name, -name"
// @Param        page      query int    false "Página (desde 1)"
// @Param        page_size query int    false "Tamaño de página"
// @Success      200 {object} dto.ProductListResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/products [get]
func (h *ProductsHandler) List(c *gin.Context) {
	var filter dto.ProductFilter
	if !bindQuery(c, &filter) {
		return
	}
	var ok bool
	if filter.MinPrice, ok = parseDecimalQuery(c, "min_price"); !ok {
		return
	}
	if filter.MaxPrice, ok = parseDecimalQuery(c, "max_price"); !ok {
		return
	}

	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	resp.Next, resp.Previous = pageLinks(c, resp.Page, resp.PageSize, resp.Count)
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Detalle de producto
// @Tags         catalogo
// @Produce      json
// @Param        id path string true "UUID del producto"
// @Success      200 {object} dto.ProductResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/products/{id} [get]
func (h *ProductsHandler) Get(c *gin.Context) {
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

func (h *ProductsHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
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

// Update PUT /v1/admin/products/:id. Stock is not writable here; use AdjustStock.
func (h *ProductsHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
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

func (h *ProductsHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdjustStock godoc
// @Summary      Ajustar stock
// @Description  Reposición (delta > 0) o baja (delta < 0). El stock nunca queda negativo y cada ajuste queda auditado.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id   path string                 true "UUID del producto"
// @Param        body body dto.AdjustStockRequest true "Ajuste"
// @Success      200 {object} dto.StockMovementResponse
// @Failure      409 {object} apierror.InsufficientStockError
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/admin/products/{id}/stock [patch]
func (h *ProductsHandler) AdjustStock(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.inventory.Adjust(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UploadImage POST /v1/admin/products/:id/image (multipart, field "image")
func (h *ProductsHandler) UploadImage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	rel, ok := saveUpload(c, h.media, "image", "products")
	if !ok {
		return
	}
	resp, previous, err := h.svc.SetMainImage(c.Request.Context(), id, rel)
	replaceUpload(h.media, rel, previous, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddGalleryImage POST /v1/admin/products/:id/images (multipart, fields "image" and optional "order")
func (h *ProductsHandler) AddGalleryImage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order := 0
	if raw := c.PostForm("order"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(map[string]string{"order": "Debe ser un entero no negativo."}))
			return
		}
		order = n
	}
	rel, ok := saveUpload(c, h.media, "image", "products/gallery")
	if !ok {
		return
	}
	resp, err := h.svc.AddGalleryImage(c.Request.Context(), id, rel, order)
	if err != nil {
		h.media.Delete(rel)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// DeleteGalleryImage DELETE /v1/admin/products/:id/images/:imageId
func (h *ProductsHandler) DeleteGalleryImage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	imageID, ok := parseUUIDParam(c, "imageId")
	if !ok {
		return
	}
	path, err := h.svc.DeleteGalleryImage(c.Request.Context(), id, imageID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.media.Delete(path)
	c.Status(http.StatusNoContent)
}
