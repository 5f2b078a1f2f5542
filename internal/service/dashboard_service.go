package service

import (
	"context"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/repository"

	"github.com/shopspring/decimal"
)

const topProductsLimit = 5

// DashboardService computes the read-only monthly business snapshot.
type DashboardService interface {
	ComputeDashboard(ctx context.Context, now time.Time) (*dto.DashboardStats, error)
}

type dashboardService struct {
	sales     repository.SaleRepository
	expenses  repository.ExpenseRepository
	inventory InventoryService
	loc       *time.Location
}

func NewDashboardService(
	sales repository.SaleRepository,
	expenses repository.ExpenseRepository,
	inventory InventoryService,
	loc *time.Location,
) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &dashboardService{sales: sales, expenses: expenses, inventory: inventory, loc: loc}
}

// MonthBounds returns the first instant of now's month and of the month before,
// both in loc.
func MonthBounds(now time.Time, loc *time.Location) (current, previous time.Time) {
	local := now.In(loc)
	current = time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	previous = current.AddDate(0, -1, 0)
	return current, previous
}

// RevenueChangePercentage compares two revenue totals. A zero previous total
// yields 100 when there is current revenue and 0 otherwise.
func RevenueChangePercentage(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 100.0
		}
		return 0.0
	}
	pct := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(2)
	f, _ := pct.Float64()
	return f
}

func (s *dashboardService) ComputeDashboard(ctx context.Context, now time.Time) (*dto.DashboardStats, error) {
	currentStart, previousStart := MonthBounds(now, s.loc)

	currentRevenue, err := s.sales.SumTotal(ctx, currentStart, nil)
	if err != nil {
		return nil, err
	}
	previousRevenue, err := s.sales.SumTotal(ctx, previousStart, &currentStart)
	if err != nil {
		return nil, err
	}
	// Expense dates are calendar days, compared against the month's first day.
	monthFirstDay := time.Date(currentStart.Year(), currentStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	totalExpenses, err := s.expenses.SumSince(ctx, monthFirstDay)
	if err != nil {
		return nil, err
	}
	cogs, err := s.sales.SumCost(ctx, currentStart)
	if err != nil {
		return nil, err
	}
	count, err := s.sales.CountSince(ctx, currentStart)
	if err != nil {
		return nil, err
	}
	topRows, err := s.sales.TopProducts(ctx, currentStart, topProductsLimit)
	if err != nil {
		return nil, err
	}
	alerts, err := s.inventory.CriticalStockAlerts(ctx)
	if err != nil {
		return nil, err
	}

	top := make([]dto.TopProduct, 0, len(topRows))
	for _, r := range topRows {
		top = append(top, dto.TopProduct{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			TotalSold:   r.TotalSold,
			Revenue:     r.Revenue,
		})
	}

	return &dto.DashboardStats{
		CurrentMonthRevenue:     currentRevenue,
		PreviousMonthRevenue:    previousRevenue,
		RevenueChangePercentage: RevenueChangePercentage(currentRevenue, previousRevenue),
		TotalExpenses:           totalExpenses,
		CostOfGoodsSold:         cogs,
		NetProfit:               currentRevenue.Sub(cogs).Sub(totalExpenses),
		TotalSalesCount:         count,
		TopProducts:             top,
		CriticalStockAlerts:     alerts,
	}, nil
}
