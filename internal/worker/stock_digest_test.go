package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAlerts struct {
	alerts []dto.CriticalStockAlert
	err    error
}

func (s stubAlerts) CriticalStockAlerts(context.Context) ([]dto.CriticalStockAlert, error) {
	return s.alerts, s.err
}

type stubQueue struct {
	payloads []interface{}
}

func (q *stubQueue) EnqueueEmail(_ context.Context, payload interface{}) error {
	q.payloads = append(q.payloads, payload)
	return nil
}

func TestStockDigest_EnqueuesDigest(t *testing.T) {
	q := &stubQueue{}
	d := NewStockDigest(stubAlerts{alerts: []dto.CriticalStockAlert{
		{ID: uuid.New(), Name: "Brackets metálicos", StockCount: 2},
		{ID: uuid.New(), Name: "Alginato", StockCount: 0},
	}}, q, "bodega@example.com", "Dental Gestec", time.UTC)

	require.NoError(t, d.Run(context.Background()))

	require.Len(t, q.payloads, 1)
	p := q.payloads[0].(EmailJobPayload)
	assert.Equal(t, "bodega@example.com", p.ToEmail)
	assert.Contains(t, p.Subject, "2 productos")
	assert.Contains(t, p.Body, "- Brackets metálicos: 2 unidades")
	assert.Contains(t, p.Body, "- Alginato: AGOTADO")
}

func TestStockDigest_NothingCritical(t *testing.T) {
	q := &stubQueue{}
	d := NewStockDigest(stubAlerts{}, q, "bodega@example.com", "Dental Gestec", nil)

	require.NoError(t, d.Run(context.Background()))
	assert.Empty(t, q.payloads)
}

func TestStockDigest_SourceError(t *testing.T) {
	d := NewStockDigest(stubAlerts{err: errors.New("db down")}, &stubQueue{}, "x@y.z", "", nil)
	assert.ErrorContains(t, d.Run(context.Background()), "db down")
}

func TestStartStockDigest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	disabled, err := StartStockDigest(ctx, "0 8 * * *", NewStockDigest(stubAlerts{}, &stubQueue{}, "", "", nil))
	require.NoError(t, err)
	assert.Nil(t, disabled)

	_, err = StartStockDigest(ctx, "not a cron", NewStockDigest(stubAlerts{}, &stubQueue{}, "x@y.z", "", nil))
	assert.Error(t, err)

	c, err := StartStockDigest(ctx, "0 8 * * *", NewStockDigest(stubAlerts{}, &stubQueue{}, "x@y.z", "", nil))
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
}
