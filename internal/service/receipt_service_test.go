package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"
	"github.com/Renatopaccha/Dental-Gest/internal/service"
	"github.com/Renatopaccha/Dental-Gest/internal/worker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	written []string
}

func (r *stubRenderer) Write(w io.Writer, sale *dto.SaleResponse) error {
	_, err := io.WriteString(w, "%PDF receipt "+sale.ProductName)
	return err
}

func (r *stubRenderer) WriteFile(dir string, sale *dto.SaleResponse) (string, error) {
	p := filepath.Join(dir, "recibo_"+sale.ID.String()+".pdf")
	r.written = append(r.written, p)
	return p, nil
}

type stubDispatcher struct {
	payloads []interface{}
	err      error
}

func (d *stubDispatcher) EnqueueEmail(_ context.Context, payload interface{}) error {
	if d.err != nil {
		return d.err
	}
	d.payloads = append(d.payloads, payload)
	return nil
}

func TestReceipt_Render(t *testing.T) {
	f := buildSaleSvc(t)
	p := seedProduct(f.products, "Anestesia lidocaína", 5, nil)
	sale, err := f.svc.RecordSale(context.Background(), saleReq(p, 1, "8.00"))
	require.NoError(t, err)

	svc := service.NewReceiptService(f.svc, &stubRenderer{}, nil, "/media/receipts/sales", "Dental Gestec")
	var buf bytes.Buffer
	require.NoError(t, svc.Render(context.Background(), sale.ID, &buf))
	assert.Equal(t, "%PDF receipt Anestesia lidocaína", buf.String())
}

func TestReceipt_RenderUnknownSale(t *testing.T) {
	f := buildSaleSvc(t)
	svc := service.NewReceiptService(f.svc, &stubRenderer{}, nil, "", "")

	err := svc.Render(context.Background(), uuid.New(), io.Discard)
	assert.True(t, service.IsNotFound(err))
}

func TestReceipt_EmailQueuesAttachment(t *testing.T) {
	f := buildSaleSvc(t)
	p := seedProduct(f.products, "Guantes nitrilo", 10, nil)
	sale, err := f.svc.RecordSale(context.Background(), saleReq(p, 2, "6.25"))
	require.NoError(t, err)

	renderer := &stubRenderer{}
	dispatcher := &stubDispatcher{}
	svc := service.NewReceiptService(f.svc, renderer, dispatcher, "/media/receipts/sales", "Dental Gestec")

	require.NoError(t, svc.Email(context.Background(), sale.ID, "cliente@example.com"))

	require.Len(t, dispatcher.payloads, 1)
	payload := dispatcher.payloads[0].(worker.EmailJobPayload)
	assert.Equal(t, "cliente@example.com", payload.ToEmail)
	assert.Equal(t, renderer.written[0], payload.AttachmentPath)
	assert.Contains(t, payload.Body, "$12.50")
	assert.Contains(t, payload.Subject, "Dental Gestec")
}

func TestReceipt_EmailEnqueueFailure(t *testing.T) {
	f := buildSaleSvc(t)
	p := seedProduct(f.products, "Guantes nitrilo", 10, nil)
	sale, err := f.svc.RecordSale(context.Background(), saleReq(p, 1, "6.25"))
	require.NoError(t, err)

	svc := service.NewReceiptService(f.svc, &stubRenderer{}, &stubDispatcher{err: errors.New("redis down")}, "/tmp", "")
	assert.ErrorContains(t, svc.Email(context.Background(), sale.ID, "a@b.c"), "redis down")
}
