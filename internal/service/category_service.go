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

type CategoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	List(ctx context.Context, audience string) ([]dto.CategoryResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo     repository.CategoryRepository
	products repository.ProductRepository
	cache    ProductCache
}

func NewCategoryService(repo repository.CategoryRepository, products repository.ProductRepository, cache ProductCache) CategoryService {
	return &categoryService{repo: repo, products: products, cache: cache}
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	var catSlug string
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		catSlug = slug.Make(*req.Slug)
		taken, err := s.repo.SlugExists(ctx, catSlug)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, &ConstraintViolationError{Detail: "Ya existe una categoría con el slug " + catSlug}
		}
	} else {
		var err error
		if catSlug, err = uniqueSlug(ctx, name, s.repo.SlugExists); err != nil {
			return nil, err
		}
	}

	c := &model.Category{
		Name:           name,
		Slug:           catSlug,
		Description:    req.Description,
		TargetAudience: audienceOrDefault(req.TargetAudience),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, constraintOr(err, "Ya existe una categoría con ese nombre")
	}
	return categoryToResponse(c, 0), nil
}

func (s *categoryService) List(ctx context.Context, audience string) ([]dto.CategoryResponse, error) {
	list, err := s.repo.List(ctx, audience)
	if err != nil {
		return nil, err
	}
	counts, err := s.products.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for i := range list {
		out = append(out, *categoryToResponse(&list[i], counts[list[i].ID]))
	}
	return out, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, catSlug string) (*dto.CategoryResponse, error) {
	c, err := s.repo.FindBySlug(ctx, catSlug)
	if err != nil {
		return nil, notFoundOr(err, "Categoría")
	}
	counts, err := s.products.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	return categoryToResponse(c, counts[c.ID]), nil
}

// Update never regenerates the slug; published links keep working after a rename.
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Categoría")
	}
	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.TargetAudience != nil {
		c.TargetAudience = *req.TargetAudience
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, constraintOr(err, "Ya existe una categoría con ese nombre")
	}
	if s.cache != nil {
		s.cache.Flush(ctx)
	}
	counts, err := s.products.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	return categoryToResponse(c, counts[c.ID]), nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound("Categoría")
	case repository.IsForeignKeyViolation(err):
		return &ConstraintViolationError{Detail: "La categoría tiene productos asociados y no puede eliminarse"}
	}
	return err
}

func audienceOrDefault(a string) string {
	if a == "" {
		return model.AudienceGeneral
	}
	return a
}

func categoryToResponse(c *model.Category, productCount int64) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:             c.ID,
		Name:           c.Name,
		Slug:           c.Slug,
		Description:    c.Description,
		TargetAudience: c.TargetAudience,
		ProductCount:   productCount,
	}
}
