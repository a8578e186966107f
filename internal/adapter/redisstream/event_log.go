package redisstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/yanun0323/logs"

	"stock-settlement/internal/domain"
	"stock-settlement/internal/port"
)

var (
	_ port.EventPublisher = (*EventLog)(nil)
	_ port.EventConsumer  = (*EventLog)(nil)
)

// envelope wraps the event on the wire with an id and schema version.
type envelope struct {
	ID      string                  `json:"id"`
	Version int                     `json:"version"`
	Event   domain.OrderPlacedEvent `json:"event"`
}

type Config struct {
	Addr     string
	Password string
	DB       int

	// Stream is the base stream name; partition p lives at
	// "<Stream>.<p>".
	Stream     string
	Group      string
	Consumer   string
	Partitions int

	// Block bounds each XREADGROUP wait so cancellation is observed.
	Block time.Duration
}

// EventLog is an at-least-once OrderPlaced channel over Redis Streams.
// Events are hash-partitioned by order id across one stream per
// partition, each consumed through a consumer group: unacked entries
// stay pending and are redelivered to the next consumer start.
type EventLog struct {
	client *redis.Client
	cfg    Config
}

func NewEventLog(cfg Config) *EventLog {
	if cfg.Stream == "" {
		cfg.Stream = "orders.placed"
	}
	if cfg.Group == "" {
		cfg.Group = "order-settlement"
	}
	if cfg.Consumer == "" {
		cfg.Consumer = uuid.NewString()
	}
	if cfg.Partitions <= 0 {
		cfg.Partitions = 1
	}
	if cfg.Block <= 0 {
		cfg.Block = 5 * time.Second
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &EventLog{client: rdb, cfg: cfg}
}

func (l *EventLog) Close() error {
	return l.client.Close()
}

func (l *EventLog) streamKey(partition int) string {
	return fmt.Sprintf("%s.%d", l.cfg.Stream, partition)
}

func (l *EventLog) partitionFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % l.cfg.Partitions
}

func (l *EventLog) PublishOrderPlaced(ctx context.Context, ev domain.OrderPlacedEvent) error {
	b, err := json.Marshal(envelope{
		ID:      uuid.NewString(),
		Version: 1,
		Event:   ev,
	})
	if err != nil {
		return err
	}
	stream := l.streamKey(l.partitionFor(ev.PartitionKey()))
	return l.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"payload": string(b)},
	}).Err()
}

// Consume joins the consumer group on every partition stream, replays
// this consumer's pending entries first, then blocks on new ones.
func (l *EventLog) Consume(ctx context.Context, h port.EventHandler) error {
	streams := make([]string, l.cfg.Partitions)
	for p := 0; p < l.cfg.Partitions; p++ {
		streams[p] = l.streamKey(p)
		err := l.client.XGroupCreateMkStream(ctx, streams[p], l.cfg.Group, "0").Err()
		if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
			return fmt.Errorf("redisstream: create group on %s: %w", streams[p], err)
		}
	}

	if err := l.consumeOnce(ctx, streams, "0", h); err != nil {
		return err
	}
	for {
		if err := l.consumeOnce(ctx, streams, ">", h); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			logs.Errorf("redisstream: read failed, retrying: %v", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (l *EventLog) consumeOnce(ctx context.Context, streams []string, cursor string, h port.EventHandler) error {
	args := make([]string, 0, len(streams)*2)
	args = append(args, streams...)
	for range streams {
		args = append(args, cursor)
	}
	res, err := l.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    l.cfg.Group,
		Consumer: l.cfg.Consumer,
		Streams:  args,
		Block:    l.cfg.Block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, stream := range res {
		for _, msg := range stream.Messages {
			l.deliver(ctx, stream.Stream, msg, h)
		}
	}
	return nil
}

func (l *EventLog) deliver(ctx context.Context, stream string, msg redis.XMessage, h port.EventHandler) {
	payload, ok := msg.Values["payload"].(string)
	if !ok {
		// Malformed entry, ack so it does not wedge the group.
		logs.Errorf("redisstream: entry %s on %s has no payload, acking", msg.ID, stream)
		_ = l.client.XAck(ctx, stream, l.cfg.Group, msg.ID).Err()
		return
	}
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		logs.Errorf("redisstream: entry %s on %s undecodable, acking: %v", msg.ID, stream, err)
		_ = l.client.XAck(ctx, stream, l.cfg.Group, msg.ID).Err()
		return
	}
	if err := h(ctx, env.Event); err != nil {
		// Leave unacked; the pending entry is redelivered later.
		logs.Warnf("redisstream: handler failed for entry %s (order %s): %v",
			msg.ID, env.Event.OrderID, err)
		return
	}
	if err := l.client.XAck(ctx, stream, l.cfg.Group, msg.ID).Err(); err != nil {
		logs.Errorf("redisstream: ack of %s failed: %v", msg.ID, err)
	}
}
