package handler

import (
	"net/http"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/service"

	"github.com/gin-gonic/gin"
)

type BrandsHandler struct {
	svc   service.BrandService
	media MediaStore
}

func NewBrandsHandler(svc service.BrandService, media MediaStore) *BrandsHandler {
	return &BrandsHandler{svc: svc, media: media}
}

// List godoc
// @Summary      Listar marcas
// @Tags         catalogo
// @Produce      json
// @Param        audience query string false "STUDENT | PROFESSIONAL | GENERAL"
// @Success      200 {array} dto.BrandResponse
// @Router       /v1/brands [get]
func (h *BrandsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), c.Query("audience"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetBySlug GET /v1/brands/:slug
func (h *BrandsHandler) GetBySlug(c *gin.Context) {
	resp, err := h.svc.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BrandsHandler) Create(c *gin.Context) {
	var req dto.CreateBrandRequest
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

func (h *BrandsHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateBrandRequest
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

// UploadImage POST /v1/admin/brands/:id/image (multipart, field "image")
func (h *BrandsHandler) UploadImage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	rel, ok := saveUpload(c, h.media, "image", "brands")
	if !ok {
		return
	}
	resp, previous, err := h.svc.SetImage(c.Request.Context(), id, rel)
	replaceUpload(h.media, rel, previous, err)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete removes the brand; its products keep existing without a brand.
func (h *BrandsHandler) Delete(c *gin.Context) {
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
