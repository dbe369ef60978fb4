package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DairyFarmers/dfi-chat/pkg/notify"
)

// Sink is where decoded message-created events go. The real email/push
// pipeline lives outside this repo; LogSink stands in for it.
type Sink interface {
	Deliver(ctx context.Context, event notify.Event) error
}

type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(ctx context.Context, event notify.Event) error {
	s.log.Info("notification dispatched",
		"message_id", event.MessageID,
		"receiver_id", event.ReceiverID,
		"sender_id", event.SenderID,
	)
	return nil
}

// Consumer drains the message-created topic and feeds the sink. A bad event
// is logged and skipped; a broker error backs off and retries, so the
// consumer survives broker restarts.
type Consumer struct {
	reader *kafka.Reader
	sink   Sink
	log    *slog.Logger
}

func NewConsumer(brokers []string, groupID string, sink Sink, log *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    notify.Topic,
		GroupID:  groupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: r, sink: sink, log: log}
}

func (c *Consumer) Consume(ctx context.Context) {
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Error("read event failed, retrying", "error", err)
			time.Sleep(1 * time.Second)
			continue
		}

		var event notify.Event
		if err := json.Unmarshal(m.Value, &event); err != nil {
			c.log.Error("undecodable event skipped", "error", err)
			continue
		}

		if err := c.sink.Deliver(ctx, event); err != nil {
			c.log.Error("delivery failed", "message_id", event.MessageID, "error", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
