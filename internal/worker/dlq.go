package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// deadLetterCap bounds each dead-letter list; older entries are trimmed.
const deadLetterCap = 500

// DeadLetter is a job that could not be delivered, kept for inspection.
type DeadLetter struct {
	JobType  string          `json:"job_type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	FailedAt time.Time       `json:"failed_at"`
}

// DeadLetters parks failed jobs in one capped Redis list per source queue,
// newest first, under dlq:<queue>.
type DeadLetters struct {
	rdb *redis.Client
}

func NewDeadLetters(rdb *redis.Client) *DeadLetters {
	return &DeadLetters{rdb: rdb}
}

func deadLetterKey(queue string) string { return "dlq:" + queue }

// Park stores a failed job. Failures to park are logged, never returned.
func (d *DeadLetters) Park(ctx context.Context, queue, jobType string, payload json.RawMessage, reason string) {
	data, err := json.Marshal(DeadLetter{
		JobType:  jobType,
		Payload:  payload,
		Reason:   reason,
		FailedAt: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dead letter: encode failed")
		return
	}

	key := deadLetterKey(queue)
	_, err = d.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, deadLetterCap-1)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("dead letter: push failed")
		return
	}
	log.Warn().Str("queue", queue).Str("job_type", jobType).Str("reason", reason).Msg("job dead-lettered")
}

// Len returns the number of parked jobs for queue.
func (d *DeadLetters) Len(ctx context.Context, queue string) (int64, error) {
	return d.rdb.LLen(ctx, deadLetterKey(queue)).Result()
}

// Recent returns up to n parked jobs for queue, newest first.
func (d *DeadLetters) Recent(ctx context.Context, queue string, n int64) ([]DeadLetter, error) {
	if n <= 0 {
		return nil, nil
	}
	raws, err := d.rdb.LRange(ctx, deadLetterKey(queue), 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadLetter, 0, len(raws))
	for _, raw := range raws {
		var dl DeadLetter
		if err := json.Unmarshal([]byte(raw), &dl); err != nil {
			return nil, fmt.Errorf("dead letter: decode: %w", err)
		}
		out = append(out, dl)
	}
	return out, nil
}
