package worker

// email_worker.go
// Processes email jobs from QueueEmail: sale receipts and the stock digest.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/infra"

	"github.com/rs/zerolog/log"
)

const maxEmailAttempts = 3

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail        string `json:"to_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	AttachmentPath string `json:"attachment_path,omitempty"`
}

// Sender delivers one email. Implemented by infra.Mailer.
type Sender interface {
	Send(to, subject, body, attachmentPath string) error
}

// EmailWorker sends queued emails through the SMTP circuit breaker.
type EmailWorker struct {
	sender  Sender
	cb      *infra.CircuitBreaker
	backoff time.Duration
}

func NewEmailWorker(sender Sender, cb *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{sender: sender, cb: cb, backoff: time.Second}
}

// Process sends one email, retrying with exponential backoff.
// Returns an error once every attempt failed so the pool can dead-letter the job.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := withRetry(ctx, maxEmailAttempts, w.backoff, func(attempt int) error {
		err := w.cb.Execute(func() error {
			return w.sender.Send(payload.ToEmail, payload.Subject, payload.Body, payload.AttachmentPath)
		})
		if err != nil && attempt+1 < maxEmailAttempts {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", payload.ToEmail).
				Msg("email_worker: send failed, retrying")
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: email sent")
	return nil
}

// permanent errors are not worth another attempt.
func permanent(err error) bool {
	return errors.Is(err, infra.ErrMailerDisabled)
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = base, 3 = 2×base.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := base * time.Duration(1<<uint(i-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			if permanent(err) {
				return err
			}
			continue
		}
		return nil
	}
	return lastErr
}
