package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptRenderer produces the PDF receipt of a sale. Implemented by infra.ReceiptPDF.
type ReceiptRenderer interface {
	Write(w io.Writer, sale *dto.SaleResponse) error
	WriteFile(dir string, sale *dto.SaleResponse) (string, error)
}

type ReceiptService interface {
	Render(ctx context.Context, saleID uuid.UUID, w io.Writer) error
	Email(ctx context.Context, saleID uuid.UUID, to string) error
}

type receiptService struct {
	sales      SaleService
	renderer   ReceiptRenderer
	dispatcher JobDispatcher
	dir        string
	business   string
}

// NewReceiptService stores emailed receipts under dir (MEDIA_ROOT/receipts/sales).
func NewReceiptService(sales SaleService, renderer ReceiptRenderer, dispatcher JobDispatcher, dir, business string) ReceiptService {
	return &receiptService{sales: sales, renderer: renderer, dispatcher: dispatcher, dir: dir, business: business}
}

func (s *receiptService) Render(ctx context.Context, saleID uuid.UUID, w io.Writer) error {
	sale, err := s.sales.GetSale(ctx, saleID)
	if err != nil {
		return err
	}
	return s.renderer.Write(w, sale)
}

// Email writes the receipt to disk and queues it as an attachment. Delivery
// happens in the worker pool.
func (s *receiptService) Email(ctx context.Context, saleID uuid.UUID, to string) error {
	if s.dispatcher == nil {
		return fmt.Errorf("receipt email: job queue unavailable")
	}
	sale, err := s.sales.GetSale(ctx, saleID)
	if err != nil {
		return err
	}
	path, err := s.renderer.WriteFile(s.dir, sale)
	if err != nil {
		return err
	}

	payload := worker.EmailJobPayload{
		ToEmail:        to,
		Subject:        fmt.Sprintf("%s - recibo de venta %s", s.business, sale.ID.String()[:8]),
		Body:           fmt.Sprintf("Adjuntamos el recibo de su compra de %d x %s por $%s.\n\nGracias por su preferencia.", sale.Quantity, sale.ProductName, sale.Total.StringFixed(2)),
		AttachmentPath: path,
	}
	if err := s.dispatcher.EnqueueEmail(ctx, payload); err != nil {
		return fmt.Errorf("receipt email: enqueue: %w", err)
	}
	log.Info().Str("sale_id", sale.ID.String()).Str("to", to).Str("file", filepath.Base(path)).Msg("receipt email queued")
	return nil
}
