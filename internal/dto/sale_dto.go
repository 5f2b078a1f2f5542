package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// RecordSaleRequest is the body of POST /v1/finance/sales. Any total sent by the
// client is ignored; it is always recomputed from quantity and unit price.
type RecordSaleRequest struct {
	ProductID    string           `json:"product"       validate:"required,uuid"`
	Quantity     int              `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"    validate:"required,min=0"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
	SaleDate     *string          `json:"sale_date"     validate:"omitempty"` // RFC 3339; empty = now
	CustomerName string           `json:"customer_name" validate:"max=200"`
	Notes        string           `json:"notes"`
}

// UpdateSaleRequest may not change product or quantity.
type UpdateSaleRequest struct {
	ProductID    *string          `json:"product"       validate:"omitempty,uuid"`
	Quantity     *int             `json:"quantity"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
	SaleDate     *string          `json:"sale_date"`
	CustomerName *string          `json:"customer_name" validate:"omitempty,max=200"`
	Notes        *string          `json:"notes"`
}

// SaleFilter is bound from the query string of GET /v1/finance/sales.
type SaleFilter struct {
	Product   string `form:"product"    validate:"omitempty,uuid"`
	StartDate string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page,default=1"       validate:"min=1"`
	PageSize  int    `form:"page_size,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleResponse struct {
	ID                     uuid.UUID        `json:"id"`
	ProductID              uuid.UUID        `json:"product"`
	ProductName            string           `json:"product_name"`
	Quantity               int              `json:"quantity"`
	UnitPrice              decimal.Decimal  `json:"unit_price"`
	UnitCost               *decimal.Decimal `json:"unit_cost"`
	Total                  decimal.Decimal  `json:"total"`
	Profit                 decimal.Decimal  `json:"profit"`
	ProfitMarginPercentage int              `json:"profit_margin_percentage"`
	SaleDate               string           `json:"sale_date"`
	CustomerName           string           `json:"customer_name"`
	Notes                  string           `json:"notes"`
	CreatedAt              string           `json:"created_at"`
}

type SaleListResponse struct {
	Count    int64          `json:"count"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Results  []SaleResponse `json:"results"`
}

// SaleCSVRow is one line of the sales ledger export.
type SaleCSVRow struct {
	ID           string `csv:"id"`
	SaleDate     string `csv:"sale_date"`
	Product      string `csv:"product"`
	Quantity     int    `csv:"quantity"`
	UnitPrice    string `csv:"unit_price"`
	UnitCost     string `csv:"unit_cost"`
	Total        string `csv:"total"`
	Profit       string `csv:"profit"`
	CustomerName string `csv:"customer_name"`
	Notes        string `csv:"notes"`
}

// EmailReceiptRequest is the body of POST /v1/finance/sales/:id/receipt/email.
type EmailReceiptRequest struct {
	Email string `json:"email" validate:"required,email"`
}
