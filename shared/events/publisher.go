package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/corebank/services/shared/errs"
)

// Publisher appends lifecycle events to Redis streams. It is called inside the
// unit of work that produced the domain change: a publish failure is returned
// as a SystemError so the caller rolls back the write. There is no outbox and
// no retry; a broker outage blocks the mutation entirely.
type Publisher struct {
	client  *goredis.Client
	timeout time.Duration
	log     *zap.Logger
}

// NewPublisher creates a Publisher. timeout bounds each broker round trip;
// expiry is reported as the same publish failure class as any transport fault.
func NewPublisher(client *goredis.Client, timeout time.Duration, log *zap.Logger) *Publisher {
	return &Publisher{client: client, timeout: timeout, log: log}
}

// Publish appends one event to stream. Returns a *errs.SystemError on any
// marshalling or transport failure.
func (p *Publisher) Publish(ctx context.Context, stream, eventType string, data any) error {
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return errs.NewSystem("marshal event", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := &goredis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"event": eventJSON},
	}
	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		p.log.Error("event publish failed",
			zap.String("stream", stream),
			zap.String("type", eventType),
			zap.Error(err))
		return errs.NewSystem("publish event", err)
	}

	p.log.Debug("event published",
		zap.String("stream", stream),
		zap.String("type", eventType),
		zap.String("event_id", event.ID))
	return nil
}
