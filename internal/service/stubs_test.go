package service_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/model"
	"github.com/Renatopaccha/Dental-Gest/internal/repository"
	"github.com/Renatopaccha/Dental-Gest/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory ProductRepository stub ─────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
	images   map[uuid.UUID]*model.ProductImage
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products: make(map[uuid.UUID]*model.Product),
		images:   make(map[uuid.UUID]*model.ProductImage),
	}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

// FindByID returns a copy, as a real query would.
func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var result []model.Product
	for _, p := range r.products {
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.BrandID != nil && (p.BrandID == nil || *p.BrandID != *filter.BrandID) {
			continue
		}
		if filter.InStock != nil && p.InStock != *filter.InStock {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	total := int64(len(result))
	start := (filter.Page - 1) * filter.PageSize
	if start > len(result) {
		start = len(result)
	}
	end := start + filter.PageSize
	if end > len(result) {
		end = len(result)
	}
	return result[start:end], total, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	stored, ok := r.products[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stock, inStock := stored.StockCount, stored.InStock
	cp := *p
	cp.StockCount, cp.InStock = stock, inStock
	r.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) SetImage(_ context.Context, id uuid.UUID, path string) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Image = &path
	return nil
}

func (r *stubProductRepo) AddImage(_ context.Context, img *model.ProductImage) error {
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	r.images[img.ID] = img
	return nil
}

func (r *stubProductRepo) FindImage(_ context.Context, productID, imageID uuid.UUID) (*model.ProductImage, error) {
	img, ok := r.images[imageID]
	if !ok || img.ProductID != productID {
		return nil, gorm.ErrRecordNotFound
	}
	return img, nil
}

func (r *stubProductRepo) DeleteImage(_ context.Context, productID, imageID uuid.UUID) error {
	img, ok := r.images[imageID]
	if !ok || img.ProductID != productID {
		return gorm.ErrRecordNotFound
	}
	delete(r.images, imageID)
	return nil
}

func (r *stubProductRepo) CountByCategory(_ context.Context) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	for _, p := range r.products {
		out[p.CategoryID]++
	}
	return out, nil
}

func (r *stubProductRepo) CountByBrand(_ context.Context) (map[uuid.UUID]int64, error) {
	out := map[uuid.UUID]int64{}
	for _, p := range r.products {
		if p.BrandID != nil {
			out[*p.BrandID]++
		}
	}
	return out, nil
}

func (r *stubProductRepo) LowStock(_ context.Context, threshold, limit int) ([]model.Product, error) {
	var result []model.Product
	for _, p := range r.products {
		if p.StockCount > 0 && p.StockCount < threshold {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].StockCount != result[j].StockCount {
			return result[i].StockCount < result[j].StockCount
		}
		return result[i].Name < result[j].Name
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *stubProductRepo) OutOfStock(_ context.Context, limit int) ([]model.Product, error) {
	var result []model.Product
	for _, p := range r.products {
		if p.StockCount == 0 {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *stubProductRepo) FindByIDForUpdate(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) (bool, error) {
	p, ok := r.products[id]
	if !ok {
		return false, nil
	}
	if p.StockCount+delta < 0 {
		return false, nil
	}
	p.StockCount += delta
	p.InStock = p.StockCount > 0
	return true, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// Ensure the stub satisfies the interface at compile time.
var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Category / Brand stubs ───────────────────────────────────────────────────

type stubCategoryRepo struct {
	categories map[uuid.UUID]*model.Category
	// deleteErr, when set, is returned by Delete (e.g. a FK violation).
	deleteErr error
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{categories: make(map[uuid.UUID]*model.Category)}
}

func (r *stubCategoryRepo) Create(_ context.Context, c *model.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.categories[c.ID] = c
	return nil
}

func (r *stubCategoryRepo) List(_ context.Context, audience string) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.categories {
		if audience == "" || c.TargetAudience == audience {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCategoryRepo) FindBySlug(_ context.Context, slug string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoryRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.FindBySlug(ctx, slug)
	return err == nil, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *model.Category) error {
	cp := *c
	r.categories[c.ID] = &cp
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.categories[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.categories, id)
	return nil
}

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

type stubBrandRepo struct {
	brands map[uuid.UUID]*model.Brand
}

func newStubBrandRepo() *stubBrandRepo {
	return &stubBrandRepo{brands: make(map[uuid.UUID]*model.Brand)}
}

func (r *stubBrandRepo) Create(_ context.Context, b *model.Brand) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	r.brands[b.ID] = b
	return nil
}

func (r *stubBrandRepo) List(_ context.Context, audience string) ([]model.Brand, error) {
	var out []model.Brand
	for _, b := range r.brands {
		if audience == "" || b.TargetAudience == audience {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubBrandRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Brand, error) {
	b, ok := r.brands[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *stubBrandRepo) FindBySlug(_ context.Context, slug string) (*model.Brand, error) {
	for _, b := range r.brands {
		if b.Slug == slug {
			cp := *b
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubBrandRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := r.FindBySlug(ctx, slug)
	return err == nil, nil
}

func (r *stubBrandRepo) Update(_ context.Context, b *model.Brand) error {
	cp := *b
	r.brands[b.ID] = &cp
	return nil
}

func (r *stubBrandRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.brands[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.brands, id)
	return nil
}

var _ repository.BrandRepository = (*stubBrandRepo)(nil)

// ── Sale / Expense / StockMovement stubs ─────────────────────────────────────

type stubSaleRepo struct {
	sales    map[uuid.UUID]*model.Sale
	products *stubProductRepo
}

func newStubSaleRepo(products *stubProductRepo) *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale), products: products}
}

func (r *stubSaleRepo) CreateTx(_ *gorm.DB, s *model.Sale) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	cp := *s
	cp.Product = nil
	r.sales[s.ID] = &cp
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	if p, ok := r.products.products[s.ProductID]; ok {
		pc := *p
		cp.Product = &pc
	}
	return &cp, nil
}

func (r *stubSaleRepo) FindByIDForUpdate(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubSaleRepo) Update(_ context.Context, s *model.Sale) error {
	stored, ok := r.sales[s.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.UnitPrice = s.UnitPrice
	stored.UnitCost = s.UnitCost
	stored.Total = s.Total
	stored.SaleDate = s.SaleDate
	stored.CustomerName = s.CustomerName
	stored.Notes = s.Notes
	return nil
}

func (r *stubSaleRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	if _, ok := r.sales[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.sales, id)
	return nil
}

func (r *stubSaleRepo) inRange(s *model.Sale, from *time.Time, to *time.Time) bool {
	if from != nil && s.SaleDate.Before(*from) {
		return false
	}
	if to != nil && !s.SaleDate.Before(*to) {
		return false
	}
	return true
}

func (r *stubSaleRepo) List(ctx context.Context, filter repository.SaleListFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for id, s := range r.sales {
		if filter.ProductID != nil && s.ProductID != *filter.ProductID {
			continue
		}
		if !r.inRange(s, filter.From, filter.To) {
			continue
		}
		full, _ := r.FindByID(ctx, id)
		out = append(out, *full)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SaleDate.After(out[j].SaleDate) })
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) SumTotal(_ context.Context, from time.Time, to *time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, s := range r.sales {
		if r.inRange(s, &from, to) {
			sum = sum.Add(s.Total)
		}
	}
	return sum, nil
}

func (r *stubSaleRepo) SumCost(_ context.Context, from time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, s := range r.sales {
		if r.inRange(s, &from, nil) && s.UnitCost != nil {
			sum = sum.Add(s.UnitCost.Mul(decimal.NewFromInt(int64(s.Quantity))))
		}
	}
	return sum, nil
}

func (r *stubSaleRepo) CountSince(_ context.Context, from time.Time) (int64, error) {
	var n int64
	for _, s := range r.sales {
		if r.inRange(s, &from, nil) {
			n++
		}
	}
	return n, nil
}

func (r *stubSaleRepo) TopProducts(_ context.Context, from time.Time, limit int) ([]repository.TopProductRow, error) {
	byProduct := map[uuid.UUID]*repository.TopProductRow{}
	for _, s := range r.sales {
		if !r.inRange(s, &from, nil) {
			continue
		}
		row, ok := byProduct[s.ProductID]
		if !ok {
			name := ""
			if p, ok := r.products.products[s.ProductID]; ok {
				name = p.Name
			}
			row = &repository.TopProductRow{ProductID: s.ProductID, ProductName: name}
			byProduct[s.ProductID] = row
		}
		row.TotalSold += int64(s.Quantity)
		row.Revenue = row.Revenue.Add(s.Total)
	}
	rows := make([]repository.TopProductRow, 0, len(byProduct))
	for _, row := range byProduct {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalSold != rows[j].TotalSold {
			return rows[i].TotalSold > rows[j].TotalSold
		}
		if rows[i].ProductName != rows[j].ProductName {
			return rows[i].ProductName < rows[j].ProductName
		}
		return rows[i].ProductID.String() < rows[j].ProductID.String()
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

type stubExpenseRepo struct {
	expenses map[uuid.UUID]*model.Expense
}

func newStubExpenseRepo() *stubExpenseRepo {
	return &stubExpenseRepo{expenses: make(map[uuid.UUID]*model.Expense)}
}

func (r *stubExpenseRepo) Create(_ context.Context, e *model.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	cp := *e
	r.expenses[e.ID] = &cp
	return nil
}

func (r *stubExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Expense, error) {
	e, ok := r.expenses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *stubExpenseRepo) List(_ context.Context, filter repository.ExpenseListFilter) ([]model.Expense, int64, error) {
	var out []model.Expense
	for _, e := range r.expenses {
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, int64(len(out)), nil
}

func (r *stubExpenseRepo) Update(_ context.Context, e *model.Expense) error {
	cp := *e
	r.expenses[e.ID] = &cp
	return nil
}

func (r *stubExpenseRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.expenses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.expenses, id)
	return nil
}

func (r *stubExpenseRepo) SetReceipt(_ context.Context, id uuid.UUID, path string) error {
	e, ok := r.expenses[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.Receipt = &path
	return nil
}

func (r *stubExpenseRepo) SumSince(_ context.Context, since time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	day := since.Format("2006-01-02")
	for _, e := range r.expenses {
		if e.Date.Format("2006-01-02") >= day {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

var _ repository.ExpenseRepository = (*stubExpenseRepo)(nil)

type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// ── ProductCache stub ────────────────────────────────────────────────────────

type stubCache struct {
	entries     map[uuid.UUID]*dto.ProductResponse
	invalidated []uuid.UUID
	flushes     int
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[uuid.UUID]*dto.ProductResponse)}
}

func (c *stubCache) Get(_ context.Context, id uuid.UUID) (*dto.ProductResponse, bool) {
	p, ok := c.entries[id]
	return p, ok
}

func (c *stubCache) Set(_ context.Context, id uuid.UUID, p *dto.ProductResponse) { c.entries[id] = p }

func (c *stubCache) Invalidate(_ context.Context, ids ...uuid.UUID) {
	for _, id := range ids {
		delete(c.entries, id)
		c.invalidated = append(c.invalidated, id)
	}
}

func (c *stubCache) Flush(_ context.Context) {
	c.entries = make(map[uuid.UUID]*dto.ProductResponse)
	c.flushes++
}

var _ service.ProductCache = (*stubCache)(nil)

// ── Helpers ───────────────────────────────────────────────────────────────────

func seedProduct(repo *stubProductRepo, name string, stock int, cost *decimal.Decimal) *model.Product {
	p := &model.Product{
		ID:             uuid.New(),
		Name:           name,
		Description:    name,
		Price:          decimal.NewFromInt(25),
		CostPrice:      cost,
		CategoryID:     uuid.New(),
		TargetAudience: model.AudienceGeneral,
		StockCount:     stock,
		InStock:        stock > 0,
	}
	repo.products[p.ID] = p
	return p
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}
