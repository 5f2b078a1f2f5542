package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TopProduct struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	TotalSold   int64           `json:"total_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type CriticalStockAlert struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	StockCount int       `json:"stock_count"`
}

// DashboardStats is the monthly business snapshot served by GET /v1/finance/dashboard.
type DashboardStats struct {
	CurrentMonthRevenue     decimal.Decimal      `json:"current_month_revenue"`
	PreviousMonthRevenue    decimal.Decimal      `json:"previous_month_revenue"`
	RevenueChangePercentage float64              `json:"revenue_change_percentage"`
	TotalExpenses           decimal.Decimal      `json:"total_expenses"`
	CostOfGoodsSold         decimal.Decimal      `json:"cost_of_goods_sold"`
	NetProfit               decimal.Decimal      `json:"net_profit"`
	TotalSalesCount         int64                `json:"total_sales_count"`
	TopProducts             []TopProduct         `json:"top_products"`
	CriticalStockAlerts     []CriticalStockAlert `json:"critical_stock_alerts"`
}
