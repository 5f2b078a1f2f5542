package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateExpenseRequest struct {
	Concept  string          `json:"concept"  validate:"required,min=2,max=200"`
	Amount   decimal.Decimal `json:"amount"   validate:"required,gt=0"`
	Category string          `json:"category" validate:"omitempty,oneof=MARKETING LOGISTICS OPERATIONS INVENTORY UTILITIES OTHER"`
	Date     string          `json:"date"     validate:"required,datetime=2006-01-02"`
	Notes    string          `json:"notes"`
}

type UpdateExpenseRequest struct {
	Concept  *string          `json:"concept"  validate:"omitempty,min=2,max=200"`
	Amount   *decimal.Decimal `json:"amount"   validate:"omitempty,gt=0"`
	Category *string          `json:"category" validate:"omitempty,oneof=MARKETING LOGISTICS OPERATIONS INVENTORY UTILITIES OTHER"`
	Date     *string          `json:"date"     validate:"omitempty,datetime=2006-01-02"`
	Notes    *string          `json:"notes"`
}

// ExpenseFilter is bound from the query string of GET /v1/finance/expenses.
type ExpenseFilter struct {
	Category  string `form:"category"   validate:"omitempty,oneof=MARKETING LOGISTICS OPERATIONS INVENTORY UTILITIES OTHER"`
	StartDate string `form:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page,default=1"       validate:"min=1"`
	PageSize  int    `form:"page_size,default=50" validate:"min=1,max=500"`
}

type ExpenseResponse struct {
	ID              uuid.UUID       `json:"id"`
	Concept         string          `json:"concept"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	CategoryDisplay string          `json:"category_display"`
	Date            string          `json:"date"`
	Receipt         *string         `json:"receipt"`
	ReceiptURL      *string         `json:"receipt_url"`
	Notes           string          `json:"notes"`
	CreatedAt       string          `json:"created_at"`
}

type ExpenseListResponse struct {
	Count    int64             `json:"count"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Results  []ExpenseResponse `json:"results"`
}

// ExpenseCSVRow is one line of the expense ledger export.
type ExpenseCSVRow struct {
	ID       string `csv:"id"`
	Date     string `csv:"date"`
	Concept  string `csv:"concept"`
	Category string `csv:"category"`
	Amount   string `csv:"amount"`
	Notes    string `csv:"notes"`
}
