package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name           string           `json:"name"            validate:"required,min=2,max=200"`
	Description    string           `json:"description"     validate:"required"`
	Price          *decimal.Decimal `json:"price"           validate:"required,min=0"`
	DiscountPrice  *decimal.Decimal `json:"discount_price"`
	CostPrice      *decimal.Decimal `json:"cost_price"`
	CategoryID     string           `json:"category"        validate:"required,uuid"`
	BrandID        *string          `json:"brand"           validate:"omitempty,uuid"`
	TargetAudience string           `json:"target_audience" validate:"omitempty,oneof=STUDENT PROFESSIONAL GENERAL"`
	// StockCount is the opening stock. Later changes go through stock adjustments.
	StockCount int `json:"stock_count" validate:"min=0"`
}

// UpdateProductRequest never carries stock: stock only moves through sales and adjustments.
type UpdateProductRequest struct {
	Name               *string          `json:"name"            validate:"omitempty,min=2,max=200"`
	Description        *string          `json:"description"`
	Price              *decimal.Decimal `json:"price"`
	DiscountPrice      *decimal.Decimal `json:"discount_price"`
	ClearDiscountPrice bool             `json:"clear_discount_price"`
	CostPrice          *decimal.Decimal `json:"cost_price"`
	CategoryID         *string          `json:"category"        validate:"omitempty,uuid"`
	BrandID            *string          `json:"brand"           validate:"omitempty,uuid"`
	ClearBrand         bool             `json:"clear_brand"`
	TargetAudience     *string          `json:"target_audience" validate:"omitempty,oneof=STUDENT PROFESSIONAL GENERAL"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,min=3"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// ProductFilter is bound from the query string of GET /v1/products.
type ProductFilter struct {
	Category string           `form:"category"`
	Brand    string           `form:"brand"`
	MinPrice *decimal.Decimal `form:"-"`
	MaxPrice *decimal.Decimal `form:"-"`
	InStock  *bool            `form:"in_stock"`
	Audience string           `form:"audience"  validate:"omitempty,oneof=STUDENT PROFESSIONAL GENERAL"`
	Search   string           `form:"search"`
	Ordering string           `form:"ordering"  validate:"omitempty,oneof=price -price created_at -created_at stock_count -stock_count name -name"`
	Page     int              `form:"page,default=1"      validate:"min=1"`
	PageSize int              `form:"page_size"           validate:"min=0,max=100"`

	// Resolved by the service from Category / Brand (slug or id).
	CategoryID *uuid.UUID `form:"-"`
	BrandID    *uuid.UUID `form:"-"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductImageResponse struct {
	ID       uuid.UUID `json:"id"`
	Image    string    `json:"image"`
	ImageURL *string   `json:"image_url"`
	Order    int       `json:"order"`
}

type ProductResponse struct {
	ID                 uuid.UUID              `json:"id"`
	Name               string                 `json:"name"`
	Description        string                 `json:"description"`
	Price              decimal.Decimal        `json:"price"`
	DiscountPrice      *decimal.Decimal       `json:"discount_price"`
	CurrentPrice       decimal.Decimal        `json:"current_price"`
	HasDiscount        bool                   `json:"has_discount"`
	DiscountPercentage int                    `json:"discount_percentage"`
	CategoryID         uuid.UUID              `json:"category"`
	CategoryName       string                 `json:"category_name"`
	CategorySlug       string                 `json:"category_slug"`
	BrandID            *uuid.UUID             `json:"brand"`
	BrandName          *string                `json:"brand_name"`
	TargetAudience     string                 `json:"target_audience"`
	StockCount         int                    `json:"stock_count"`
	InStock            bool                   `json:"in_stock"`
	StockStatus        string                 `json:"stock_status"`
	Image              *string                `json:"image"`
	ImageURL           *string                `json:"image_url"`
	Images             []ProductImageResponse `json:"images"`
	CreatedAt          string                 `json:"created_at"`
	UpdatedAt          string                 `json:"updated_at"`
}

// ProductListResponse follows the {count, next, previous, results} page shape
// the storefront already consumes.
type ProductListResponse struct {
	Count    int64             `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
	Results  []ProductResponse `json:"results"`
	Page     int               `json:"-"`
	PageSize int               `json:"-"`
}
