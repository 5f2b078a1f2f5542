package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LowStockThreshold is the unit count below which an in-stock product is
// reported as "Poco Stock" and listed in the critical stock alerts.
const LowStockThreshold = 5

const (
	StockStatusInStock    = "En Stock"
	StockStatusLowStock   = "Poco Stock"
	StockStatusOutOfStock = "Agotado"
)

// Product is a catalog item. InStock mirrors StockCount > 0 and is recomputed by
// the BeforeSave hook and by the inventory decrement; it is never taken from input.
type Product struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string           `gorm:"size:200;index;not null"`
	Description    string           `gorm:"type:text;not null;default:''"`
	Price          decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	DiscountPrice  *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CostPrice      *decimal.Decimal `gorm:"type:decimal(10,2)"`
	CategoryID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	BrandID        *uuid.UUID       `gorm:"type:uuid;index"`
	TargetAudience string           `gorm:"size:20;not null;default:'GENERAL'"`
	StockCount     int              `gorm:"not null;default:0"`
	InStock        bool             `gorm:"not null;default:false"`
	Image          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Category *Category      `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	Brand    *Brand         `gorm:"foreignKey:BrandID;constraint:OnDelete:SET NULL"`
	Images   []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// BeforeSave keeps InStock consistent on every full save.
func (p *Product) BeforeSave(_ *gorm.DB) error {
	p.SyncStockFlag()
	return nil
}

// SyncStockFlag recomputes InStock from StockCount.
func (p *Product) SyncStockFlag() {
	p.InStock = p.StockCount > 0
}

// CurrentPrice is the discount price when one is set, otherwise the regular price.
func (p *Product) CurrentPrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

func (p *Product) HasDiscount() bool { return p.DiscountPrice != nil }

// DiscountPercentage returns the truncated percentage off the regular price.
func (p *Product) DiscountPercentage() int {
	if p.DiscountPrice == nil || !p.Price.IsPositive() {
		return 0
	}
	pct := p.Price.Sub(*p.DiscountPrice).Div(p.Price).Mul(decimal.NewFromInt(100))
	return int(pct.IntPart())
}

func (p *Product) StockStatus() string {
	switch {
	case p.StockCount <= 0:
		return StockStatusOutOfStock
	case p.StockCount < LowStockThreshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// Validate checks the price invariants and returns field → message pairs.
func (p *Product) Validate() map[string]string {
	fields := map[string]string{}
	if p.Price.IsNegative() {
		fields["price"] = "El precio no puede ser negativo."
	}
	if p.DiscountPrice != nil {
		if p.DiscountPrice.IsNegative() {
			fields["discount_price"] = "El precio de oferta no puede ser negativo."
		} else if p.DiscountPrice.GreaterThanOrEqual(p.Price) {
			fields["discount_price"] = "El precio de oferta debe ser menor que el precio regular."
		}
	}
	if p.CostPrice != nil && p.CostPrice.IsNegative() {
		fields["cost_price"] = "El costo no puede ser negativo."
	}
	if p.StockCount < 0 {
		fields["stock_count"] = "El stock no puede ser negativo."
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// ProductImage is one entry of a product's ordered gallery.
type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	Image     string    `gorm:"not null"`
	Order     int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time
}
