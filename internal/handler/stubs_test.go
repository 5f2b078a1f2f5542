package handler

import (
	"context"
	"io"
	"mime/multipart"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/model"
	"github.com/Renatopaccha/Dental-Gest/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Sales ─────────────────────────────────────────────────────────────────────

type stubSaleService struct {
	record  func(req dto.RecordSaleRequest) (*dto.SaleResponse, error)
	get     func(id uuid.UUID) (*dto.SaleResponse, error)
	update  func(id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error)
	deleted []uuid.UUID
	list    *dto.SaleListResponse
	export  []dto.SaleCSVRow
	lastF   dto.SaleFilter
	err     error
}

var _ service.SaleService = (*stubSaleService)(nil)

func (s *stubSaleService) RecordSale(_ context.Context, req dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	return s.record(req)
}
func (s *stubSaleService) GetSale(_ context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	return s.get(id)
}
func (s *stubSaleService) UpdateSale(_ context.Context, id uuid.UUID, req dto.UpdateSaleRequest) (*dto.SaleResponse, error) {
	return s.update(id, req)
}
func (s *stubSaleService) DeleteSale(_ context.Context, id uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, id)
	return nil
}
func (s *stubSaleService) ListSales(_ context.Context, f dto.SaleFilter) (*dto.SaleListResponse, error) {
	s.lastF = f
	return s.list, s.err
}
func (s *stubSaleService) ExportSales(_ context.Context, f dto.SaleFilter) ([]dto.SaleCSVRow, error) {
	s.lastF = f
	return s.export, s.err
}

type stubReceipts struct {
	emailed map[uuid.UUID]string
	err     error
}

var _ service.ReceiptService = (*stubReceipts)(nil)

func (r *stubReceipts) Render(_ context.Context, id uuid.UUID, w io.Writer) error {
	if r.err != nil {
		return r.err
	}
	_, err := io.WriteString(w, "%PDF-1.3 "+id.String())
	return err
}

func (r *stubReceipts) Email(_ context.Context, id uuid.UUID, to string) error {
	if r.err != nil {
		return r.err
	}
	if r.emailed == nil {
		r.emailed = map[uuid.UUID]string{}
	}
	r.emailed[id] = to
	return nil
}

// ── Products / inventory ─────────────────────────────────────────────────────

type stubProductService struct {
	products  map[uuid.UUID]*dto.ProductResponse
	lastF     dto.ProductFilter
	listCount int64
	images    map[uuid.UUID]string
	prevImage *string
}

var _ service.ProductService = (*stubProductService)(nil)

func newStubProductService() *stubProductService {
	return &stubProductService{products: map[uuid.UUID]*dto.ProductResponse{}, images: map[uuid.UUID]string{}}
}

func (s *stubProductService) Create(_ context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	p := &dto.ProductResponse{ID: uuid.New(), Name: req.Name, StockCount: req.StockCount}
	if req.Price != nil {
		p.Price = *req.Price
	}
	s.products[p.ID] = p
	return p, nil
}
func (s *stubProductService) Get(_ context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, &service.NotFoundError{Resource: "Producto"}
}
func (s *stubProductService) List(_ context.Context, f dto.ProductFilter) (*dto.ProductListResponse, error) {
	s.lastF = f
	page, size := f.Page, f.PageSize
	if size == 0 {
		size = 12
	}
	return &dto.ProductListResponse{Count: s.listCount, Results: []dto.ProductResponse{}, Page: page, PageSize: size}, nil
}
func (s *stubProductService) Update(ctx context.Context, id uuid.UUID, _ dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	return s.Get(ctx, id)
}
func (s *stubProductService) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.products[id]; !ok {
		return &service.NotFoundError{Resource: "Producto"}
	}
	delete(s.products, id)
	return nil
}
func (s *stubProductService) SetMainImage(ctx context.Context, id uuid.UUID, path string) (*dto.ProductResponse, *string, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	prev := s.prevImage
	p.Image = &path
	return p, prev, nil
}
func (s *stubProductService) AddGalleryImage(ctx context.Context, id uuid.UUID, path string, order int) (*dto.ProductImageResponse, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	imgID := uuid.New()
	s.images[imgID] = path
	return &dto.ProductImageResponse{ID: imgID, Image: path, Order: order}, nil
}
func (s *stubProductService) DeleteGalleryImage(_ context.Context, _, imageID uuid.UUID) (string, error) {
	path, ok := s.images[imageID]
	if !ok {
		return "", &service.NotFoundError{Resource: "Imagen"}
	}
	delete(s.images, imageID)
	return path, nil
}

type stubInventory struct {
	adjustErr error
	alerts    []dto.CriticalStockAlert
	movements *dto.StockMovementListResponse
	lastF     dto.StockMovementFilter
}

var _ service.InventoryService = (*stubInventory)(nil)

func (s *stubInventory) CanFulfill(p *model.Product, quantity int) bool { return p.StockCount >= quantity }
func (s *stubInventory) DecrementTx(context.Context, *gorm.DB, *model.Product, int, uuid.UUID) error {
	return nil
}
func (s *stubInventory) RestoreTx(context.Context, *gorm.DB, *model.Product, int, uuid.UUID) error {
	return nil
}
func (s *stubInventory) Adjust(_ context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.StockMovementResponse, error) {
	if s.adjustErr != nil {
		return nil, s.adjustErr
	}
	return &dto.StockMovementResponse{ID: uuid.New(), ProductID: id, Type: model.MovementAdjustment, Quantity: req.Delta}, nil
}
func (s *stubInventory) CriticalStockAlerts(context.Context) ([]dto.CriticalStockAlert, error) {
	return s.alerts, nil
}
func (s *stubInventory) ListMovements(_ context.Context, f dto.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	s.lastF = f
	return s.movements, nil
}

// ── Dashboard ────────────────────────────────────────────────────────────────

type stubDashboard struct {
	at    time.Time
	stats *dto.DashboardStats
}

func (s *stubDashboard) ComputeDashboard(_ context.Context, now time.Time) (*dto.DashboardStats, error) {
	s.at = now
	return s.stats, nil
}

// ── Media ────────────────────────────────────────────────────────────────────

type stubMedia struct {
	saved   []string
	deleted []string
	err     error
}

func (m *stubMedia) Save(subdir string, fh *multipart.FileHeader) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	rel := subdir + "/" + fh.Filename
	m.saved = append(m.saved, rel)
	return rel, nil
}

func (m *stubMedia) Delete(rel string) { m.deleted = append(m.deleted, rel) }
