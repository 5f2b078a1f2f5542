package repository

import (
	"context"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaleListFilter defines filters for listing sales. From is inclusive, To exclusive.
type SaleListFilter struct {
	ProductID *uuid.UUID
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

// TopProductRow is one product's units and revenue over a period.
type TopProductRow struct {
	ProductID   uuid.UUID
	ProductName string
	TotalSold   int64
	Revenue     decimal.Decimal
}

type SaleRepository interface {
	CreateTx(tx *gorm.DB, s *model.Sale) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	// FindByIDForUpdate locks the sale row so a concurrent delete cannot restore stock twice.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Sale, error)
	// Update writes the editable columns only; product_id and quantity are fixed.
	Update(ctx context.Context, s *model.Sale) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	List(ctx context.Context, filter SaleListFilter) ([]model.Sale, int64, error)

	// Aggregates over sale_date; to == nil means open-ended.
	SumTotal(ctx context.Context, from time.Time, to *time.Time) (decimal.Decimal, error)
	SumCost(ctx context.Context, from time.Time) (decimal.Decimal, error)
	CountSince(ctx context.Context, from time.Time) (int64, error)
	TopProducts(ctx context.Context, from time.Time, limit int) ([]TopProductRow, error)

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepository(db *gorm.DB) SaleRepository { return &saleRepo{db: db} }

func (r *saleRepo) DB() *gorm.DB { return r.db }

func (r *saleRepo) CreateTx(tx *gorm.DB, s *model.Sale) error {
	return tx.Omit(clause.Associations).Create(s).Error
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	if err := r.db.WithContext(ctx).Preload("Product").First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	var s model.Sale
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) Update(ctx context.Context, s *model.Sale) error {
	res := r.db.WithContext(ctx).Model(&model.Sale{}).Where("id = ?", s.ID).
		Updates(map[string]interface{}{
			"unit_price":    s.UnitPrice,
			"unit_cost":     s.UnitCost,
			"total":         s.Total,
			"sale_date":     s.SaleDate,
			"customer_name": s.CustomerName,
			"notes":         s.Notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *saleRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Delete(&model.Sale{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *saleRepo) List(ctx context.Context, filter SaleListFilter) ([]model.Sale, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.From != nil {
		q = q.Where("sale_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("sale_date < ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}
	offset := (page - 1) * limit

	var sales []model.Sale
	err := q.Preload("Product").
		Order("sale_date DESC").Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&sales).Error
	return sales, total, err
}

func (r *saleRepo) sinceQuery(ctx context.Context, from time.Time, to *time.Time) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Sale{}).Where("sale_date >= ?", from)
	if to != nil {
		q = q.Where("sale_date < ?", *to)
	}
	return q
}

func (r *saleRepo) SumTotal(ctx context.Context, from time.Time, to *time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.sinceQuery(ctx, from, to).Select("COALESCE(SUM(total), 0)").Row().Scan(&sum)
	return sum, err
}

// SumCost adds quantity × unit_cost over sales with a known unit cost.
func (r *saleRepo) SumCost(ctx context.Context, from time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.sinceQuery(ctx, from, nil).
		Where("unit_cost IS NOT NULL").
		Select("COALESCE(SUM(quantity * unit_cost), 0)").
		Row().Scan(&sum)
	return sum, err
}

func (r *saleRepo) CountSince(ctx context.Context, from time.Time) (int64, error) {
	var n int64
	err := r.sinceQuery(ctx, from, nil).Count(&n).Error
	return n, err
}

func (r *saleRepo) TopProducts(ctx context.Context, from time.Time, limit int) ([]TopProductRow, error) {
	var rows []TopProductRow
	err := r.db.WithContext(ctx).Table("sales").
		Select("sales.product_id AS product_id, products.name AS product_name, "+
			"SUM(sales.quantity) AS total_sold, SUM(sales.total) AS revenue").
		Joins("JOIN products ON products.id = sales.product_id").
		Where("sales.sale_date >= ?", from).
		Group("sales.product_id, products.name").
		Order("total_sold DESC").Order("products.name ASC").Order("sales.product_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
