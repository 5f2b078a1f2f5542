package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/model"
	"github.com/Renatopaccha/Dental-Gest/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type BrandService interface {
	Create(ctx context.Context, req dto.CreateBrandRequest) (*dto.BrandResponse, error)
	List(ctx context.Context, audience string) ([]dto.BrandResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.BrandResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateBrandRequest) (*dto.BrandResponse, error)
	// SetImage stores the logo path and returns the previous one, if any.
	SetImage(ctx context.Context, id uuid.UUID, path string) (*dto.BrandResponse, *string, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type brandService struct {
	repo     repository.BrandRepository
	products repository.ProductRepository
	cache    ProductCache
	mediaURL string
}

func NewBrandService(repo repository.BrandRepository, products repository.ProductRepository, cache ProductCache, mediaBaseURL string) BrandService {
	return &brandService{repo: repo, products: products, cache: cache, mediaURL: mediaBaseURL}
}

func (s *brandService) Create(ctx context.Context, req dto.CreateBrandRequest) (*dto.BrandResponse, error) {
	name := strings.TrimSpace(req.Name)
	var brandSlug string
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		brandSlug = slug.Make(*req.Slug)
		taken, err := s.repo.SlugExists(ctx, brandSlug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &ConstraintViolationError{Detail: "Ya existe una marca con el slug " + brandSlug}
		}
	} else {
		var err error
		if brandSlug, err = uniqueSlug(ctx, name, s.repo.SlugExists); err != nil {
			return nil, err
		}
	}

	b := &model.Brand{
		Name:           name,
		Slug:           brandSlug,
		TargetAudience: audienceOrDefault(req.TargetAudience),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, constraintOr(err, "Ya existe una marca con ese nombre")
	}
	return s.toResponse(b, 0), nil
}

func (s *brandService) List(ctx context.Context, audience string) ([]dto.BrandResponse, error) {
	list, err := s.repo.List(ctx, audience)
	if err != nil {
		return nil, err
	}
	counts, err := s.products.CountByBrand(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BrandResponse, 0, len(list))
	for i := range list {
		out = append(out, *s.toResponse(&list[i], counts[list[i].ID]))
	}
	return out, nil
}

func (s *brandService) GetBySlug(ctx context.Context, brandSlug string) (*dto.BrandResponse, error) {
	b, err := s.repo.FindBySlug(ctx, brandSlug)
	if err != nil {
		return nil, notFoundOr(err, "Marca")
	}
	counts, err := s.products.CountByBrand(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponse(b, counts[b.ID]), nil
}

func (s *brandService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateBrandRequest) (*dto.BrandResponse, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Marca")
	}
	if req.Name != nil {
		b.Name = strings.TrimSpace(*req.Name)
	}
	if req.TargetAudience != nil {
		b.TargetAudience = *req.TargetAudience
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, constraintOr(err, "Ya existe una marca con ese nombre")
	}
	if s.cache != nil {
		s.cache.Flush(ctx)
	}
	counts, err := s.products.CountByBrand(ctx)
	if err != nil {
		return nil, err
	}
	return s.toResponse(b, counts[b.ID]), nil
}

func (s *brandService) SetImage(ctx context.Context, id uuid.UUID, path string) (*dto.BrandResponse, *string, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, "Marca")
	}
	previous := b.Image
	b.Image = &path
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, nil, err
	}
	counts, err := s.products.CountByBrand(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s.toResponse(b, counts[b.ID]), previous, nil
}

// Delete detaches the brand from its products instead of blocking.
func (s *brandService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound("Marca")
		}
		return err
	}
	if s.cache != nil {
		s.cache.Flush(ctx)
	}
	return nil
}

func (s *brandService) toResponse(b *model.Brand, productCount int64) *dto.BrandResponse {
	return &dto.BrandResponse{
		ID:             b.ID,
		Name:           b.Name,
		Slug:           b.Slug,
		Image:          b.Image,
		ImageURL:       mediaURL(s.mediaURL, b.Image),
		TargetAudience: b.TargetAudience,
		ProductCount:   productCount,
	}
}
