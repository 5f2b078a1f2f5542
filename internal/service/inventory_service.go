package service

import (
	"context"
	"fmt"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/model"
	"github.com/Renatopaccha/Dental-Gest/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// alertListLimit caps each of the low-stock and out-of-stock alert lists.
const alertListLimit = 10

// InventoryService is the only writer of products.stock_count.
type InventoryService interface {
	// CanFulfill reports whether quantity units can be taken from p.
	CanFulfill(p *model.Product, quantity int) bool
	// DecrementTx removes quantity units from p inside tx and records the movement.
	// p must have been loaded with ProductRepository.FindByIDForUpdate on the same tx.
	DecrementTx(ctx context.Context, tx *gorm.DB, p *model.Product, quantity int, saleID uuid.UUID) error
	// RestoreTx returns quantity units to p inside tx after a sale is deleted.
	RestoreTx(ctx context.Context, tx *gorm.DB, p *model.Product, quantity int, saleID uuid.UUID) error
	// Adjust applies a manual restock or write-off.
	Adjust(ctx context.Context, productID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error)
	CriticalStockAlerts(ctx context.Context) ([]dto.CriticalStockAlert, error)
	ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type inventoryService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	cache     ProductCache
}

func NewInventoryService(
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	cache ProductCache,
) InventoryService {
	return &inventoryService{products: products, movements: movements, cache: cache}
}

// CanFulfill only compares stock. Callers reject non-positive quantities themselves.
func (s *inventoryService) CanFulfill(p *model.Product, quantity int) bool {
	return p.StockCount >= quantity
}

func (s *inventoryService) DecrementTx(_ context.Context, tx *gorm.DB, p *model.Product, quantity int, saleID uuid.UUID) error {
	if quantity <= 0 {
		return invalid("quantity", "La cantidad debe ser mayor a cero.")
	}
	if !s.CanFulfill(p, quantity) {
		return &InsufficientStockError{Available: p.StockCount, Requested: quantity}
	}
	ok, err := s.products.UpdateStockTx(tx, p.ID, -quantity)
	if err != nil {
		return err
	}
	if !ok {
		return &InsufficientStockError{Available: p.StockCount, Requested: quantity}
	}
	return s.apply(tx, p, -quantity, model.MovementSale, "Venta registrada", &saleID)
}

func (s *inventoryService) RestoreTx(_ context.Context, tx *gorm.DB, p *model.Product, quantity int, saleID uuid.UUID) error {
	if quantity <= 0 {
		return invalid("quantity", "La cantidad debe ser mayor a cero.")
	}
	if _, err := s.products.UpdateStockTx(tx, p.ID, quantity); err != nil {
		return err
	}
	return s.apply(tx, p, quantity, model.MovementSaleDeleted, "Venta eliminada", &saleID)
}

// apply mirrors a committed stock_count change onto p and writes the audit row.
func (s *inventoryService) apply(tx *gorm.DB, p *model.Product, delta int, kind, reason string, ref *uuid.UUID) error {
	before := p.StockCount
	p.StockCount += delta
	p.SyncStockFlag()
	return s.movements.CreateTx(tx, &model.StockMovement{
		ProductID:   p.ID,
		Type:        kind,
		Quantity:    delta,
		StockBefore: before,
		StockAfter:  p.StockCount,
		Reason:      reason,
		ReferenceID: ref,
	})
}

func (s *inventoryService) Adjust(ctx context.Context, productID uuid.UUID, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error) {
	if req.Delta == 0 {
		return nil, invalid("delta", "El ajuste no puede ser cero.")
	}

	var (
		product  *model.Product
		movement *model.StockMovement
	)
	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		p, err := s.products.FindByIDForUpdate(tx, productID)
		if err != nil {
			return notFoundOr(err, "Producto")
		}
		if p.StockCount+req.Delta < 0 {
			return invalid("delta", fmt.Sprintf("El stock no puede quedar negativo. Disponible: %d", p.StockCount))
		}
		ok, err := s.products.UpdateStockTx(tx, p.ID, req.Delta)
		if err != nil {
			return err
		}
		if !ok {
			return invalid("delta", fmt.Sprintf("El stock no puede quedar negativo. Disponible: %d", p.StockCount))
		}
		before := p.StockCount
		p.StockCount += req.Delta
		p.SyncStockFlag()
		movement = &model.StockMovement{
			ProductID:   p.ID,
			Type:        model.MovementAdjustment,
			Quantity:    req.Delta,
			StockBefore: before,
			StockAfter:  p.StockCount,
			Reason:      req.Reason,
		}
		product = p
		return s.movements.CreateTx(tx, movement)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, productID)
	}
	log.Info().
		Str("product_id", productID.String()).
		Int("delta", req.Delta).
		Int("stock_after", product.StockCount).
		Msg("stock adjusted")

	movement.Product = product
	resp := movementToResponse(movement)
	return &resp, nil
}

// CriticalStockAlerts lists low-stock products (lowest first) followed by
// out-of-stock products (by name), each list capped at alertListLimit.
// The low-stock cut-off is the same one Product.StockStatus reports.
func (s *inventoryService) CriticalStockAlerts(ctx context.Context) ([]dto.CriticalStockAlert, error) {
	low, err := s.products.LowStock(ctx, model.LowStockThreshold, alertListLimit)
	if err != nil {
		return nil, err
	}
	out, err := s.products.OutOfStock(ctx, alertListLimit)
	if err != nil {
		return nil, err
	}
	alerts := make([]dto.CriticalStockAlert, 0, len(low)+len(out))
	for _, p := range append(low, out...) {
		alerts = append(alerts, dto.CriticalStockAlert{ID: p.ID, Name: p.Name, StockCount: p.StockCount})
	}
	return alerts, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	page, limit := normalizePage(filter.Page, filter.PageSize, 100)
	q := repository.StockMovementFilter{Type: filter.Type, Page: page, Limit: limit}
	if filter.Product != "" {
		id, err := parseID(filter.Product, "product")
		if err != nil {
			return nil, err
		}
		q.ProductID = &id
	}
	movements, total, err := s.movements.List(ctx, q)
	if err != nil {
		return nil, err
	}
	results := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		results = append(results, movementToResponse(&movements[i]))
	}
	return &dto.StockMovementListResponse{Count: total, Page: page, PageSize: limit, Results: results}, nil
}

func movementToResponse(m *model.StockMovement) dto.StockMovementResponse {
	name := ""
	if m.Product != nil {
		name = m.Product.Name
	}
	return dto.StockMovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: name,
		Type:        m.Type,
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Reason:      m.Reason,
		ReferenceID: m.ReferenceID,
		CreatedAt:   formatTime(m.CreatedAt),
	}
}
