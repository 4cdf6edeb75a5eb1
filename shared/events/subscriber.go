package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Handler processes one delivered event. Returning an error leaves the message
// un-acked so the group redelivers it; handlers that must ack regardless of
// outcome swallow their own errors and return nil.
type Handler func(ctx context.Context, event Event) error

// Subscriber is a durable consumer-group reader over one stream. Delivery is
// at-least-once: handlers must tolerate duplicates.
type Subscriber struct {
	client        *goredis.Client
	group         string
	consumer      string
	stream        string
	handler       Handler
	batchSize     int64
	blockDuration time.Duration
	log           *zap.Logger
}

type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
}

func NewSubscriber(client *goredis.Client, cfg SubscriberConfig, log *zap.Logger) *Subscriber {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 10
	}
	if cfg.BlockDuration == 0 {
		cfg.BlockDuration = 5 * time.Second
	}
	return &Subscriber{
		client:        client,
		group:         cfg.Group,
		consumer:      cfg.Consumer,
		stream:        cfg.Stream,
		handler:       cfg.Handler,
		batchSize:     cfg.BatchSize,
		blockDuration: cfg.BlockDuration,
		log:           log,
	}
}

// Start creates the consumer group if needed and reads until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.stream, s.group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	s.log.Info("subscriber started",
		zap.String("stream", s.stream),
		zap.String("group", s.group),
		zap.String("consumer", s.consumer))

	for {
		select {
		case <-ctx.Done():
			s.log.Info("subscriber stopping", zap.String("stream", s.stream))
			return ctx.Err()
		default:
			if err := s.readMessages(ctx); err != nil {
				s.log.Error("error reading messages", zap.String("stream", s.stream), zap.Error(err))
				time.Sleep(time.Second)
			}
		}
	}
}

func (s *Subscriber) readMessages(ctx context.Context) error {
	streams, err := s.client.XReadGroup(ctx, &goredis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{s.stream, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()

	if err == goredis.Nil {
		return nil // no messages
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := s.processMessage(ctx, message); err != nil {
				// Leave un-acked so the group redelivers it.
				s.log.Error("failed to process message",
					zap.String("message_id", message.ID),
					zap.Error(err))
				continue
			}
			if err := s.client.XAck(ctx, s.stream, s.group, message.ID).Err(); err != nil {
				s.log.Error("failed to ack message",
					zap.String("message_id", message.ID),
					zap.Error(err))
			}
		}
	}
	return nil
}

func (s *Subscriber) processMessage(ctx context.Context, message goredis.XMessage) error {
	eventData, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("invalid message format")
	}
	var event Event
	if err := json.Unmarshal([]byte(eventData), &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return s.handler(ctx, event)
}
