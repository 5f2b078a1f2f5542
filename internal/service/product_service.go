package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/model"
	"github.com/Renatopaccha/Dental-Gest/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProductService defines the business logic contract for catalog products.
// Stock is read-only here: it changes through InventoryService only.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// SetMainImage stores the main image path and returns the previous one, if any.
	SetMainImage(ctx context.Context, id uuid.UUID, path string) (*dto.ProductResponse, *string, error)
	AddGalleryImage(ctx context.Context, id uuid.UUID, path string, order int) (*dto.ProductImageResponse, error)
	// DeleteGalleryImage removes the gallery row and returns the stored file path.
	DeleteGalleryImage(ctx context.Context, productID, imageID uuid.UUID) (string, error)
}

type productService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	brands     repository.BrandRepository
	cache      ProductCache
	mediaURL   string
	pageSize   int
}

func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	brands repository.BrandRepository,
	cache ProductCache,
	mediaBaseURL string,
	pageSize int,
) ProductService {
	if pageSize < 1 {
		pageSize = 12
	}
	return &productService{
		repo:       repo,
		categories: categories,
		brands:     brands,
		cache:      cache,
		mediaURL:   mediaBaseURL,
		pageSize:   pageSize,
	}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Price == nil {
		return nil, invalid("price", "Este campo es obligatorio.")
	}
	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	var brandID *uuid.UUID
	if req.BrandID != nil && *req.BrandID != "" {
		id, err := s.resolveBrand(ctx, *req.BrandID)
		if err != nil {
			return nil, err
		}
		brandID = &id
	}

	p := &model.Product{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Price:          *req.Price,
		DiscountPrice:  req.DiscountPrice,
		CostPrice:      req.CostPrice,
		CategoryID:     categoryID,
		BrandID:        brandID,
		TargetAudience: audienceOrDefault(req.TargetAudience),
		StockCount:     req.StockCount,
	}
	if fields := p.Validate(); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	p.SyncStockFlag()
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("product_id", p.ID.String()).Str("name", p.Name).Int("stock", p.StockCount).Msg("product created")

	created, err := s.repo.FindByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(created), nil
}

// Get serves product detail through the cache; a cache miss loads and fills it.
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, id); ok {
			return cached, nil
		}
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Producto")
	}
	resp := s.toResponse(p)
	if s.cache != nil {
		s.cache.Set(ctx, id, resp)
	}
	return resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	filter.Page, filter.PageSize = normalizePage(filter.Page, filter.PageSize, s.pageSize)
	empty := &dto.ProductListResponse{Results: []dto.ProductResponse{}, Page: filter.Page, PageSize: filter.PageSize}

	// Unknown category or brand references yield an empty page, not an error.
	if filter.Category != "" {
		id, ok, err := s.lookupCategory(ctx, filter.Category)
		if err != nil {
			return nil, err
		}
		if !ok {
			return empty, nil
		}
		filter.CategoryID = &id
	}
	if filter.Brand != "" {
		id, ok, err := s.lookupBrand(ctx, filter.Brand)
		if err != nil {
			return nil, err
		}
		if !ok {
			return empty, nil
		}
		filter.BrandID = &id
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	results := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		results = append(results, *s.toResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Count:    total,
		Results:  results,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Producto")
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.ClearDiscountPrice {
		p.DiscountPrice = nil
	} else if req.DiscountPrice != nil {
		p.DiscountPrice = req.DiscountPrice
	}
	if req.CostPrice != nil {
		p.CostPrice = req.CostPrice
	}
	if req.CategoryID != nil {
		categoryID, err := s.resolveCategory(ctx, *req.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = categoryID
		p.Category = nil
	}
	if req.ClearBrand {
		p.BrandID = nil
		p.Brand = nil
	} else if req.BrandID != nil {
		brandID, err := s.resolveBrand(ctx, *req.BrandID)
		if err != nil {
			return nil, err
		}
		p.BrandID = &brandID
		p.Brand = nil
	}
	if req.TargetAudience != nil {
		p.TargetAudience = *req.TargetAudience
	}

	if fields := p.Validate(); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, notFoundOr(err, "Producto")
	}
	s.invalidate(ctx, id)

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(updated), nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound("Producto")
	case repository.IsForeignKeyViolation(err):
		return &ConstraintViolationError{Detail: "El producto tiene ventas registradas y no puede eliminarse"}
	case err != nil:
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *productService) SetMainImage(ctx context.Context, id uuid.UUID, path string) (*dto.ProductResponse, *string, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "Producto")
	}
	previous := p.Image
	if err := s.repo.SetImage(ctx, id, path); err != nil {
		return nil, nil, notFoundOr(err, "Producto")
	}
	s.invalidate(ctx, id)
	p.Image = &path
	return s.toResponse(p), previous, nil
}

func (s *productService) AddGalleryImage(ctx context.Context, id uuid.UUID, path string, order int) (*dto.ProductImageResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFoundOr(err, "Producto")
	}
	img := &model.ProductImage{ProductID: id, Image: path, Order: order}
	if err := s.repo.AddImage(ctx, img); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	resp := s.imageToResponse(img)
	return &resp, nil
}

func (s *productService) DeleteGalleryImage(ctx context.Context, productID, imageID uuid.UUID) (string, error) {
	img, err := s.repo.FindImage(ctx, productID, imageID)
	if err != nil {
		return "", notFoundOr(err, "Imagen")
	}
	if err := s.repo.DeleteImage(ctx, productID, imageID); err != nil {
		return "", notFoundOr(err, "Imagen")
	}
	s.invalidate(ctx, productID)
	return img.Image, nil
}

// ── helpers ─────────────────────────────────────────────────────────────────

func (s *productService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}

func (s *productService) resolveCategory(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := parseID(raw, "category")
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, invalid("category", "La categoría no existe.")
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (s *productService) resolveBrand(ctx context.Context, raw string) (uuid.UUID, error) {
	id, err := parseID(raw, "brand")
	if err != nil {
		return uuid.Nil, err
	}
	if _, err := s.brands.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, invalid("brand", "La marca no existe.")
		}
		return uuid.Nil, err
	}
	return id, nil
}

// lookupCategory accepts either a category id or its slug.
func (s *productService) lookupCategory(ctx context.Context, ref string) (uuid.UUID, bool, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, true, nil
	}
	c, err := s.categories.FindBySlug(ctx, ref)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return c.ID, true, nil
}

// lookupBrand accepts either a brand id or its slug.
func (s *productService) lookupBrand(ctx context.Context, ref string) (uuid.UUID, bool, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, true, nil
	}
	b, err := s.brands.FindBySlug(ctx, ref)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return b.ID, true, nil
}

func (s *productService) imageToResponse(img *model.ProductImage) dto.ProductImageResponse {
	path := img.Image
	return dto.ProductImageResponse{
		ID:       img.ID,
		Image:    img.Image,
		ImageURL: mediaURL(s.mediaURL, &path),
		Order:    img.Order,
	}
}

func (s *productService) toResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		Price:              p.Price,
		DiscountPrice:      p.DiscountPrice,
		CurrentPrice:       p.CurrentPrice(),
		HasDiscount:        p.HasDiscount(),
		DiscountPercentage: p.DiscountPercentage(),
		CategoryID:         p.CategoryID,
		BrandID:            p.BrandID,
		TargetAudience:     p.TargetAudience,
		StockCount:         p.StockCount,
		InStock:            p.InStock,
		StockStatus:        p.StockStatus(),
		Image:              p.Image,
		ImageURL:           mediaURL(s.mediaURL, p.Image),
		Images:             make([]dto.ProductImageResponse, 0, len(p.Images)),
		CreatedAt:          formatTime(p.CreatedAt),
		UpdatedAt:          formatTime(p.UpdatedAt),
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
		resp.CategorySlug = p.Category.Slug
	}
	if p.Brand != nil {
		name := p.Brand.Name
		resp.BrandName = &name
	}
	for i := range p.Images {
		resp.Images = append(resp.Images, s.imageToResponse(&p.Images[i]))
	}
	return resp
}
