package worker

// stock_digest.go
// Scheduled job that mails the critical-stock list to ALERT_EMAIL.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/dto"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// AlertSource yields the current critical-stock alerts. Implemented by
// service.InventoryService.
type AlertSource interface {
	CriticalStockAlerts(ctx context.Context) ([]dto.CriticalStockAlert, error)
}

// EmailEnqueuer is the subset of Dispatcher the digest needs.
type EmailEnqueuer interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

type StockDigest struct {
	alerts   AlertSource
	queue    EmailEnqueuer
	to       string
	business string
	loc      *time.Location
}

func NewStockDigest(alerts AlertSource, queue EmailEnqueuer, to, business string, loc *time.Location) *StockDigest {
	if loc == nil {
		loc = time.UTC
	}
	return &StockDigest{alerts: alerts, queue: queue, to: to, business: business, loc: loc}
}

// Run builds the digest and enqueues it. Nothing is sent when no product is critical.
func (d *StockDigest) Run(ctx context.Context) error {
	alerts, err := d.alerts.CriticalStockAlerts(ctx)
	if err != nil {
		return fmt.Errorf("stock digest: load alerts: %w", err)
	}
	if len(alerts) == 0 {
		log.Info().Msg("stock digest: no critical products")
		return nil
	}

	payload := EmailJobPayload{
		ToEmail: d.to,
		Subject: fmt.Sprintf("%s: %d productos con stock crítico", d.business, len(alerts)),
		Body:    d.body(alerts),
	}
	if err := d.queue.EnqueueEmail(ctx, payload); err != nil {
		return fmt.Errorf("stock digest: enqueue: %w", err)
	}
	log.Info().Int("products", len(alerts)).Str("to", d.to).Msg("stock digest enqueued")
	return nil
}

func (d *StockDigest) body(alerts []dto.CriticalStockAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Resumen de inventario del %s\n\n", time.Now().In(d.loc).Format("02/01/2006"))
	for _, a := range alerts {
		status := fmt.Sprintf("%d unidades", a.StockCount)
		if a.StockCount == 0 {
			status = "AGOTADO"
		}
		fmt.Fprintf(&b, "- %s: %s\n", a.Name, status)
	}
	return b.String()
}

// StartStockDigest schedules d on spec (standard 5-field cron, evaluated in loc)
// and stops the scheduler when ctx is cancelled. Returns nil when no
// recipient is configured.
func StartStockDigest(ctx context.Context, spec string, d *StockDigest) (*cron.Cron, error) {
	if d.to == "" {
		log.Info().Msg("stock digest disabled (ALERT_EMAIL empty)")
		return nil, nil
	}
	c := cron.New(cron.WithLocation(d.loc))
	if _, err := c.AddFunc(spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := d.Run(runCtx); err != nil {
			log.Error().Err(err).Msg("stock digest failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("stock digest: invalid schedule %q: %w", spec, err)
	}
	c.Start()
	log.Info().Str("schedule", spec).Str("to", d.to).Msg("stock digest scheduled")

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return c, nil
}
