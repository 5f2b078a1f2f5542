package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deadLettered struct {
	queue, jobType, reason string
}

func newTestPool(handlers map[string]JobHandler) (*Pool, *[]deadLettered) {
	var dead []deadLettered
	p := &Pool{handlers: handlers}
	p.deadLetter = func(_ context.Context, queue, jobType string, _ json.RawMessage, reason string) {
		dead = append(dead, deadLettered{queue, jobType, reason})
	}
	return p, &dead
}

func TestPool_RoutesByType(t *testing.T) {
	var got string
	p, dead := newTestPool(map[string]JobHandler{
		JobEmail: func(_ context.Context, payload json.RawMessage) error {
			var e EmailJobPayload
			require.NoError(t, json.Unmarshal(payload, &e))
			got = e.ToEmail
			return nil
		},
	})
	raw, err := encodeJob(JobEmail, EmailJobPayload{ToEmail: "ventas@example.com"})
	require.NoError(t, err)

	p.process(context.Background(), QueueEmail, string(raw))

	assert.Equal(t, "ventas@example.com", got)
	assert.Empty(t, *dead)
}

func TestPool_FailedJobGoesToDLQ(t *testing.T) {
	p, dead := newTestPool(map[string]JobHandler{
		JobEmail: func(context.Context, json.RawMessage) error { return errors.New("smtp down") },
	})
	raw, _ := encodeJob(JobEmail, EmailJobPayload{ToEmail: "x@y.z"})

	p.process(context.Background(), QueueEmail, string(raw))

	require.Len(t, *dead, 1)
	assert.Equal(t, deadLettered{QueueEmail, JobEmail, "smtp down"}, (*dead)[0])
}

func TestPool_UnknownTypeAndMalformed(t *testing.T) {
	p, dead := newTestPool(map[string]JobHandler{})
	raw, _ := encodeJob("newsletter", map[string]string{"a": "b"})

	p.process(context.Background(), QueueEmail, string(raw))
	p.process(context.Background(), QueueEmail, "not-json")

	require.Len(t, *dead, 2)
	assert.Equal(t, "newsletter", (*dead)[0].jobType)
	assert.Equal(t, "unknown", (*dead)[1].jobType)
}

// downHook fails every command without touching the network.
type downHook struct{ calls atomic.Int64 }

func (h *downHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	}
}

func (h *downHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.calls.Add(1)
		err := errors.New("connection refused")
		cmd.SetErr(err)
		return err
	}
}

func (h *downHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestPool_BacksOffWhenRedisIsDown(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()
	hook := &downHook{}
	rdb.AddHook(hook)

	p, dead := newTestPool(map[string]JobHandler{})
	p.rdb = rdb
	p.backoff = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx, 1)
	time.Sleep(300 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() { p.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	calls := hook.calls.Load()
	assert.GreaterOrEqual(t, calls, int64(2))
	assert.LessOrEqual(t, calls, int64(8), "worker retried without backing off")
	assert.Empty(t, *dead)
}

func TestPool_PauseEndsOnCancel(t *testing.T) {
	p := &Pool{backoff: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, p.pause(ctx))

	p.backoff = time.Millisecond
	assert.True(t, p.pause(context.Background()))
}
