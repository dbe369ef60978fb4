package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DairyFarmers/dfi-chat/pkg/model"
)

// Topic carries message-created events to the notification pipeline.
const Topic = "chat-message-created"

const publishTimeout = 5 * time.Second

// KafkaNotifier publishes message-created events. Delivery is best effort:
// failures are logged and dropped, because real-time messaging must not
// depend on the notification pipeline being up.
type KafkaNotifier struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewKafkaNotifier(brokers []string, log *slog.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    Topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaNotifier{writer: writer, log: log}
}

func (n *KafkaNotifier) MessageCreated(ctx context.Context, msg model.Message) {
	event := Event{
		MessageID:  msg.ID,
		SenderID:   msg.Sender.ID,
		SenderName: msg.Sender.Name,
		ReceiverID: msg.Receiver.ID,
		Text:       msg.Text,
		Timestamp:  msg.Timestamp.UnixMilli(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		n.log.Error("marshal notification event", "message_id", msg.ID, "error", err)
		return
	}

	// Detached from the caller's context so a closing session cannot cancel
	// an already-queued notification.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		err := n.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(msg.Receiver.ID),
			Value: value,
			Time:  msg.Timestamp,
		})
		if err != nil {
			n.log.Error("publish notification event", "message_id", msg.ID, "error", err)
		}
	}()
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
