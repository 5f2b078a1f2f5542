package handler

import (
	"net/http"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoriesHandler struct{ svc service.CategoryService }

func NewCategoriesHandler(svc service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{svc: svc}
}

// List godoc
// @Summary      Listar categorías
// @Description  Categorías con la cantidad de productos de cada una.
// @Tags         catalogo
// @Produce      json
// @Param        audience query string false "STUDENT | PROFESSIONAL | GENERAL"
// @Success      200 {array} dto.CategoryResponse
// @Router       /v1/categories [get]
func (h *CategoriesHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), c.Query("audience"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetBySlug godoc
// @Summary      Obtener categoría por slug
// @Tags         catalogo
// @Produce      json
// @Param        slug path string true "Slug"
// @Success      200 {object} dto.CategoryResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/categories/{slug} [get]
func (h *CategoriesHandler) GetBySlug(c *gin.Context) {
	resp, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create POST /v1/admin/categories
func (h *CategoriesHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
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

// Update PUT /v1/admin/categories/:id
func (h *CategoriesHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
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

// Delete godoc
// @Summary      Eliminar categoría
// @Description  Falla con 409 si algún producto la referencia.
// @Tags         admin
// @Param        id path string true "UUID de la categoría"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/admin/categories/{id} [delete]
func (h *CategoriesHandler) Delete(c *gin.Context) {
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
