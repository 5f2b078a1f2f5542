package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Renatopaccha/Dental-Gest/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSender struct {
	failures int
	calls    int
	last     EmailJobPayload
	err      error
}

func (s *stubSender) Send(to, subject, body, attachmentPath string) error {
	s.calls++
	s.last = EmailJobPayload{ToEmail: to, Subject: subject, Body: body, AttachmentPath: attachmentPath}
	if s.calls <= s.failures {
		if s.err != nil {
			return s.err
		}
		return errors.New("smtp: 421 service not available")
	}
	return nil
}

func newTestEmailWorker(sender Sender) *EmailWorker {
	w := NewEmailWorker(sender, infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "smtp", FailureThreshold: 10}))
	w.backoff = time.Millisecond
	return w
}

func rawPayload(t *testing.T, p EmailJobPayload) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(p)
	require.NoError(t, err)
	return b
}

func TestEmailWorker_SendsWithAttachment(t *testing.T) {
	sender := &stubSender{}
	w := newTestEmailWorker(sender)

	err := w.Process(context.Background(), rawPayload(t, EmailJobPayload{
		ToEmail: "cliente@example.com", Subject: "Recibo", Body: "Gracias", AttachmentPath: "/tmp/recibo.pdf",
	}))

	require.NoError(t, err)
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "/tmp/recibo.pdf", sender.last.AttachmentPath)
}

func TestEmailWorker_RetriesThenSucceeds(t *testing.T) {
	sender := &stubSender{failures: 2}
	w := newTestEmailWorker(sender)

	err := w.Process(context.Background(), rawPayload(t, EmailJobPayload{ToEmail: "a@b.c", Subject: "x"}))

	require.NoError(t, err)
	assert.Equal(t, 3, sender.calls)
}

func TestEmailWorker_ExhaustsAttempts(t *testing.T) {
	sender := &stubSender{failures: 10}
	w := newTestEmailWorker(sender)

	err := w.Process(context.Background(), rawPayload(t, EmailJobPayload{ToEmail: "a@b.c"}))

	require.Error(t, err)
	assert.Equal(t, maxEmailAttempts, sender.calls)
}

func TestEmailWorker_DisabledMailerIsNotRetried(t *testing.T) {
	sender := &stubSender{failures: 10, err: infra.ErrMailerDisabled}
	w := newTestEmailWorker(sender)

	err := w.Process(context.Background(), rawPayload(t, EmailJobPayload{ToEmail: "a@b.c"}))

	assert.ErrorIs(t, err, infra.ErrMailerDisabled)
	assert.Equal(t, 1, sender.calls)
}

func TestEmailWorker_EmptyRecipientSkipped(t *testing.T) {
	sender := &stubSender{}
	w := newTestEmailWorker(sender)

	assert.NoError(t, w.Process(context.Background(), rawPayload(t, EmailJobPayload{Subject: "x"})))
	assert.Zero(t, sender.calls)
}

func TestEmailWorker_InvalidPayload(t *testing.T) {
	w := newTestEmailWorker(&stubSender{})
	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{"to_email":`)))
}

func TestWithRetry_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := withRetry(ctx, 3, time.Hour, func(int) error {
		calls++
		cancel()
		return errors.New("boom")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
