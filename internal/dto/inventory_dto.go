package dto

import "github.com/google/uuid"

// StockMovementFilter is bound from the query string of GET /v1/inventory/movements.
type StockMovementFilter struct {
	Product  string `form:"product"  validate:"omitempty,uuid"`
	Type     string `form:"type"     validate:"omitempty,oneof=sale sale_deleted adjustment"`
	Page     int    `form:"page,default=1"        validate:"min=1"`
	PageSize int    `form:"page_size,default=100" validate:"min=1,max=500"`
}

type StockMovementResponse struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"product"`
	ProductName string     `json:"product_name"`
	Type        string     `json:"type"`
	Quantity    int        `json:"quantity"`
	StockBefore int        `json:"stock_before"`
	StockAfter  int        `json:"stock_after"`
	Reason      string     `json:"reason"`
	ReferenceID *uuid.UUID `json:"reference_id"`
	CreatedAt   string     `json:"created_at"`
}

type StockMovementListResponse struct {
	Count    int64                   `json:"count"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
	Results  []StockMovementResponse `json:"results"`
}
