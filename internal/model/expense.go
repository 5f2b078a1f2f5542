package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ExpenseMarketing  = "MARKETING"
	ExpenseLogistics  = "LOGISTICS"
	ExpenseOperations = "OPERATIONS"
	ExpenseInventory  = "INVENTORY"
	ExpenseUtilities  = "UTILITIES"
	ExpenseOther      = "OTHER"
)

// ExpenseCategoryLabels holds the display label of every expense category.
var ExpenseCategoryLabels = map[string]string{
	ExpenseMarketing:  "Marketing",
	ExpenseLogistics:  "Logística",
	ExpenseOperations: "Operativo",
	ExpenseInventory:  "Inventario",
	ExpenseUtilities:  "Servicios",
	ExpenseOther:      "Otros",
}

// Expense is an operating cost ledger entry. Date is a calendar date.
type Expense struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Concept   string          `gorm:"size:200;not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Category  string          `gorm:"size:20;not null;default:'OTHER';index"`
	Date      time.Time       `gorm:"type:date;not null;index"`
	Receipt   *string
	Notes     string `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time
}
