package service

import (
	"context"
	"strings"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/model"
	"github.com/Renatopaccha/Dental-Gest/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	UpdateSale(ctx context.Context, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error)
	DeleteSale(ctx context.Context, id uuid.UUID) error
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	ExportSales(ctx context.Context, filter dto.SaleFilter) ([]dto.SaleCSVRow, error)
}

type saleService struct {
	repo      repository.SaleRepository
	products  repository.ProductRepository
	inventory InventoryService
	cache     ProductCache
	loc       *time.Location
}

func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	inventory InventoryService,
	cache ProductCache,
	loc *time.Location,
) SaleService {
	if loc == nil {
		loc = time.UTC
	}
	return &saleService{repo: repo, products: products, inventory: inventory, cache: cache, loc: loc}
}

// ── RecordSale ────────────────────────────────────────────────────────────────
// One transaction:
//   1. Lock the product row (SELECT … FOR UPDATE)
//   2. Validate quantity and stock
//   3. Insert the sale with total = quantity × unit_price
//   4. Decrement stock and write the movement
// The product cache is invalidated after COMMIT.

func (s *saleService) RecordSale(ctx context.Context, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	productID, err := parseID(req.ProductID, "product")
	if err != nil {
		return nil, err
	}
	saleDate := time.Now().In(s.loc)
	if req.SaleDate != nil && strings.TrimSpace(*req.SaleDate) != "" {
		if saleDate, err = s.parseSaleDate(*req.SaleDate); err != nil {
			return nil, err
		}
	}

	var sale model.Sale
	var product *model.Product
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		p, err := s.products.FindByIDForUpdate(tx, productID)
		if err != nil {
			return notFoundOr(err, "Producto")
		}
		if req.Quantity <= 0 {
			return invalid("quantity", "La cantidad debe ser mayor a cero.")
		}
		if req.UnitPrice == nil {
			return invalid("unit_price", "Este campo es obligatorio.")
		}
		if req.UnitPrice.IsNegative() {
			return invalid("unit_price", "El precio unitario no puede ser negativo.")
		}
		if req.UnitCost != nil && req.UnitCost.IsNegative() {
			return invalid("unit_cost", "El costo unitario no puede ser negativo.")
		}
		if !s.inventory.CanFulfill(p, req.Quantity) {
			return &InsufficientStockError{Available: p.StockCount, Requested: req.Quantity}
		}

		sale = model.Sale{
			ProductID:    p.ID,
			Quantity:     req.Quantity,
			UnitPrice:    *req.UnitPrice,
			UnitCost:     req.UnitCost,
			SaleDate:     saleDate,
			CustomerName: strings.TrimSpace(req.CustomerName),
			Notes:        req.Notes,
		}
		// Snapshot the product's current cost when none was given; it may stay unknown.
		if sale.UnitCost == nil && p.CostPrice != nil {
			cost := *p.CostPrice
			sale.UnitCost = &cost
		}
		sale.RecomputeTotal()

		if err := s.repo.CreateTx(tx, &sale); err != nil {
			return err
		}
		if err := s.inventory.DecrementTx(ctx, tx, p, sale.Quantity, sale.ID); err != nil {
			return err
		}
		product = p
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.invalidate(ctx, productID)
	log.Info().
		Str("sale_id", sale.ID.String()).
		Str("product_id", productID.String()).
		Int("quantity", sale.Quantity).
		Str("total", sale.Total.StringFixed(2)).
		Int("stock_after", product.StockCount).
		Msg("sale recorded")

	sale.Product = product
	return s.toResponse(&sale), nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Venta")
	}
	return s.toResponse(sale), nil
}

// UpdateSale edits the commercial details of a sale. Product and quantity are
// fixed once recorded, so stock is never touched here.
func (s *saleService) UpdateSale(ctx context.Context, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Venta")
	}

	if req.ProductID != nil {
		pid, err := parseID(*req.ProductID, "product")
		if err != nil {
			return nil, err
		}
		if pid != sale.ProductID {
			return nil, invalid("product", "No se puede cambiar el producto de una venta. Elimínela y regístrela de nuevo.")
		}
	}
	if req.Quantity != nil && *req.Quantity != sale.Quantity {
		return nil, invalid("quantity", "No se puede cambiar la cantidad de una venta. Elimínela y regístrela de nuevo.")
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, invalid("unit_price", "El precio unitario no puede ser negativo.")
		}
		sale.UnitPrice = *req.UnitPrice
	}
	if req.UnitCost != nil {
		if req.UnitCost.IsNegative() {
			return nil, invalid("unit_cost", "El costo unitario no puede ser negativo.")
		}
		cost := *req.UnitCost
		sale.UnitCost = &cost
	}
	if req.SaleDate != nil {
		d, err := s.parseSaleDate(*req.SaleDate)
		if err != nil {
			return nil, err
		}
		sale.SaleDate = d
	}
	if req.CustomerName != nil {
		sale.CustomerName = strings.TrimSpace(*req.CustomerName)
	}
	if req.Notes != nil {
		sale.Notes = *req.Notes
	}
	sale.RecomputeTotal()

	if err := s.repo.Update(ctx, sale); err != nil {
		return nil, notFoundOr(err, "Venta")
	}
	return s.toResponse(sale), nil
}

// DeleteSale removes a sale and returns its units to stock in one transaction.
func (s *saleService) DeleteSale(ctx context.Context, id uuid.UUID) error {
	var productID uuid.UUID
	var quantity int
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdate(tx, id)
		if err != nil {
			return notFoundOr(err, "Venta")
		}
		p, err := s.products.FindByIDForUpdate(tx, sale.ProductID)
		if err != nil {
			return notFoundOr(err, "Producto")
		}
		if err := s.repo.DeleteTx(tx, sale.ID); err != nil {
			return notFoundOr(err, "Venta")
		}
		productID, quantity = p.ID, sale.Quantity
		return s.inventory.RestoreTx(ctx, tx, p, sale.Quantity, sale.ID)
	})
	if txErr != nil {
		return txErr
	}

	s.invalidate(ctx, productID)
	log.Info().
		Str("sale_id", id.String()).
		Str("product_id", productID.String()).
		Int("restored", quantity).
		Msg("sale deleted")
	return nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	q, err := s.listFilter(filter)
	if err != nil {
		return nil, err
	}
	sales, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	results := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		results = append(results, *s.toResponse(&sales[i]))
	}
	return &dto.SaleListResponse{Count: total, Page: q.Page, PageSize: q.Limit, Results: results}, nil
}

// maxExportRows bounds a single CSV export.
const maxExportRows = 500

func (s *saleService) ExportSales(ctx context.Context, filter dto.SaleFilter) ([]dto.SaleCSVRow, error) {
	q, err := s.listFilter(filter)
	if err != nil {
		return nil, err
	}
	q.Page, q.Limit = 1, maxExportRows
	sales, _, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	rows := make([]dto.SaleCSVRow, 0, len(sales))
	for i := range sales {
		r := s.toResponse(&sales[i])
		cost := ""
		if r.UnitCost != nil {
			cost = r.UnitCost.StringFixed(2)
		}
		rows = append(rows, dto.SaleCSVRow{
			ID:           r.ID.String(),
			SaleDate:     r.SaleDate,
			Product:      r.ProductName,
			Quantity:     r.Quantity,
			UnitPrice:    r.UnitPrice.StringFixed(2),
			UnitCost:     cost,
			Total:        r.Total.StringFixed(2),
			Profit:       r.Profit.StringFixed(2),
			CustomerName: r.CustomerName,
			Notes:        r.Notes,
		})
	}
	return rows, nil
}

// ── helpers ─────────────────────────────────────────────────────────────────

func (s *saleService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}

// listFilter converts calendar-day bounds into [from, to) instants in the business time zone.
func (s *saleService) listFilter(filter dto.SaleFilter) (repository.SaleListFilter, error) {
	page, limit := normalizePage(filter.Page, filter.PageSize, 50)
	q := repository.SaleListFilter{Page: page, Limit: limit}
	if filter.Product != "" {
		id, err := parseID(filter.Product, "product")
		if err != nil {
			return q, err
		}
		q.ProductID = &id
	}
	if filter.StartDate != "" {
		from, err := time.ParseInLocation(dateOnly, filter.StartDate, s.loc)
		if err != nil {
			return q, invalid("start_date", "Formato de fecha inválido (AAAA-MM-DD).")
		}
		q.From = &from
	}
	if filter.EndDate != "" {
		end, err := time.ParseInLocation(dateOnly, filter.EndDate, s.loc)
		if err != nil {
			return q, invalid("end_date", "Formato de fecha inválido (AAAA-MM-DD).")
		}
		to := end.AddDate(0, 0, 1)
		q.To = &to
	}
	return q, nil
}

const dateOnly = "2006-01-02"

var saleDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", dateOnly}

// parseSaleDate accepts RFC 3339 or a local date/time in the business time zone.
func (s *saleService) parseSaleDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range saleDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalid("sale_date", "Formato de fecha inválido.")
}

func (s *saleService) toResponse(sale *model.Sale) *dto.SaleResponse {
	name := ""
	if sale.Product != nil {
		name = sale.Product.Name
	}
	var cost *decimal.Decimal
	if sale.UnitCost != nil {
		c := *sale.UnitCost
		cost = &c
	}
	return &dto.SaleResponse{
		ID:                     sale.ID,
		ProductID:              sale.ProductID,
		ProductName:            name,
		Quantity:               sale.Quantity,
		UnitPrice:              sale.UnitPrice,
		UnitCost:               cost,
		Total:                  sale.Total,
		Profit:                 sale.Profit(),
		ProfitMarginPercentage: sale.ProfitMarginPercentage(),
		SaleDate:               formatTime(sale.SaleDate.In(s.loc)),
		CustomerName:           sale.CustomerName,
		Notes:                  sale.Notes,
		CreatedAt:              formatTime(sale.CreatedAt),
	}
}
