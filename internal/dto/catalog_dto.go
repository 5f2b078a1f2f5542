package dto

import "github.com/google/uuid"

// ── Request DTOs ──────────────────────────────────────────────────────────────

type CreateCategoryRequest struct {
	Name           string  `json:"name"            validate:"required,min=2,max=100"`
	Slug           *string `json:"slug"            validate:"omitempty,max=100"`
	Description    string  `json:"description"`
	TargetAudience string  `json:"target_audience" validate:"omitempty,oneof=STUDENT PROFESSIONAL GENERAL"`
}

type UpdateCategoryRequest struct {
	Name           *string `json:"name"            validate:"omitempty,min=2,max=100"`
	Description    *string `json:"description"`
	TargetAudience *string `json:"target_audience" validate:"omitempty,oneof=STUDENT PROFESSIONAL GENERAL"`
}

type CreateBrandRequest struct {
	Name           string  `json:"name"            validate:"required,min=2,max=100"`
	Slug           *string `json:"slug"            validate:"omitempty,max=100"`
	TargetAudience string  `json:"target_audience" validate:"omitempty,oneof=STUDENT PROFESSIONAL GENERAL"`
}

type UpdateBrandRequest struct {
	Name           *string `json:"name"            validate:"omitempty,min=2,max=100"`
	TargetAudience *string `json:"target_audience" validate:"omitempty,oneof=STUDENT PROFESSIONAL GENERAL"`
}

// ── Response DTOs ─────────────────────────────────────────────────────────────

type CategoryResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Description    string    `json:"description"`
	TargetAudience string    `json:"target_audience"`
	ProductCount   int64     `json:"product_count"`
}

type BrandResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Image          *string   `json:"image"`
	ImageURL       *string   `json:"image_url"`
	TargetAudience string    `json:"target_audience"`
	ProductCount   int64     `json:"product_count"`
}
