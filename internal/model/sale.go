package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is a manually recorded sale. UnitPrice and UnitCost are snapshots taken
// when the sale is recorded; Total is always Quantity × UnitPrice.
type Sale struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID    uuid.UUID        `gorm:"type:uuid;not null;index"`
	Quantity     int              `gorm:"not null"`
	UnitPrice    decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	UnitCost     *decimal.Decimal `gorm:"type:decimal(10,2)"`
	Total        decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	SaleDate     time.Time        `gorm:"not null;index"`
	CustomerName string           `gorm:"size:200;not null;default:''"`
	Notes        string           `gorm:"type:text;not null;default:''"`
	CreatedAt    time.Time

	Product *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
}

// RecomputeTotal sets Total from Quantity and UnitPrice.
func (s *Sale) RecomputeTotal() {
	s.Total = decimal.NewFromInt(int64(s.Quantity)).Mul(s.UnitPrice)
}

// CostTotal is Quantity × UnitCost, or nil when the cost is unknown.
func (s *Sale) CostTotal() *decimal.Decimal {
	if s.UnitCost == nil {
		return nil
	}
	c := decimal.NewFromInt(int64(s.Quantity)).Mul(*s.UnitCost)
	return &c
}

// Profit is zero when the unit cost is unknown.
func (s *Sale) Profit() decimal.Decimal {
	cost := s.CostTotal()
	if cost == nil {
		return decimal.Zero
	}
	return s.Total.Sub(*cost)
}

// ProfitMarginPercentage is the truncated markup over cost.
func (s *Sale) ProfitMarginPercentage() int {
	cost := s.CostTotal()
	if cost == nil || cost.IsZero() {
		return 0
	}
	return int(s.Total.Sub(*cost).Div(*cost).Mul(decimal.NewFromInt(100)).IntPart())
}
