package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	// Update writes catalog fields only; stock_count and in_stock are never touched.
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetImage(ctx context.Context, id uuid.UUID, path string) error

	AddImage(ctx context.Context, img *model.ProductImage) error
	FindImage(ctx context.Context, productID, imageID uuid.UUID) (*model.ProductImage, error)
	DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error

	CountByCategory(ctx context.Context) (map[uuid.UUID]int64, error)
	CountByBrand(ctx context.Context) (map[uuid.UUID]int64, error)

	// LowStock lists products with 0 < stock_count < threshold, lowest first.
	LowStock(ctx context.Context, threshold, limit int) ([]model.Product, error)
	// OutOfStock lists products with stock_count = 0 by name.
	OutOfStock(ctx context.Context, limit int) ([]model.Product, error)

	// Used inside transactions; callers must pass the tx instance.

	// FindByIDForUpdate loads the product holding a row lock until the tx ends.
	FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	// UpdateStockTx applies delta to stock_count and recomputes in_stock in the
	// same statement. It reports false when the result would be negative.
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) (bool, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Brand").
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, created_at ASC") }).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var productOrderings = map[string]string{
	"price":        "COALESCE(discount_price, price) ASC",
	"-price":       "COALESCE(discount_price, price) DESC",
	"created_at":   "created_at ASC",
	"-created_at":  "created_at DESC",
	"stock_count":  "stock_count ASC",
	"-stock_count": "stock_count DESC",
	"name":         "name ASC",
	"-name":        "name DESC",
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.BrandID != nil {
		q = q.Where("brand_id = ?", *filter.BrandID)
	}
	// Price bounds apply to the price a customer actually pays.
	if filter.MinPrice != nil {
		q = q.Where("COALESCE(discount_price, price) >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("COALESCE(discount_price, price) <= ?", *filter.MaxPrice)
	}
	if filter.InStock != nil {
		q = q.Where("in_stock = ?", *filter.InStock)
	}
	if filter.Audience != "" {
		q = q.Where("target_audience = ?", filter.Audience)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, ok := productOrderings[filter.Ordering]
	if !ok {
		order = "created_at DESC"
	}
	offset := (filter.Page - 1) * filter.PageSize
	err := q.Preload("Category").Preload("Brand").
		Order(order).Order("id ASC").
		Limit(filter.PageSize).Offset(offset).
		Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	res := r.db.WithContext(ctx).Model(p).
		Select("name", "description", "price", "discount_price", "cost_price",
			"category_id", "brand_id", "target_audience", "updated_at").
		Updates(map[string]interface{}{
			"name":            p.Name,
			"description":     p.Description,
			"price":           p.Price,
			"discount_price":  p.DiscountPrice,
			"cost_price":      p.CostPrice,
			"category_id":     p.CategoryID,
			"brand_id":        p.BrandID,
			"target_audience": p.TargetAudience,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete fails with a foreign-key violation while sales reference the product.
func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) SetImage(ctx context.Context, id uuid.UUID, path string) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).
		UpdateColumns(map[string]interface{}{"image": path, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepo) AddImage(ctx context.Context, img *model.ProductImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *productRepo) FindImage(ctx context.Context, productID, imageID uuid.UUID) (*model.ProductImage, error) {
	var img model.ProductImage
	err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", imageID, productID).
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *productRepo) DeleteImage(ctx context.Context, productID, imageID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", imageID, productID).
		Delete(&model.ProductImage{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type groupCount struct {
	Key uuid.UUID
	N   int64
}

func (r *productRepo) countBy(ctx context.Context, column string) (map[uuid.UUID]int64, error) {
	var rows []groupCount
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select(column + " AS key, COUNT(*) AS n").
		Where(column + " IS NOT NULL").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.N
	}
	return out, nil
}

func (r *productRepo) CountByCategory(ctx context.Context) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, "category_id")
}

func (r *productRepo) CountByBrand(ctx context.Context) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, "brand_id")
}

func (r *productRepo) LowStock(ctx context.Context, threshold, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("stock_count > 0 AND stock_count < ?", threshold).
		Order("stock_count ASC").Order("name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) OutOfStock(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("stock_count = 0").
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *productRepo) FindByIDForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock_count + ? >= 0", id, delta).
		UpdateColumns(map[string]interface{}{
			"stock_count": gorm.Expr("stock_count + ?", delta),
			"in_stock":    gorm.Expr("stock_count + ? > 0", delta),
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
