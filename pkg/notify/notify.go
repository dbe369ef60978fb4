// Package notify is the fire-and-forget bridge to the platform's
// notification/email pipeline. The send path never waits on it and never
// sees its failures.
package notify

import (
	"context"

	"github.com/DairyFarmers/dfi-chat/pkg/model"
)

// Notifier announces that a message was created. Implementations must not
// block the caller beyond queueing.
type Notifier interface {
	MessageCreated(ctx context.Context, msg model.Message)
}

// Event is the wire shape consumed by the messaging service.
type Event struct {
	MessageID  int64  `json:"message_id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	ReceiverID string `json:"receiver_id"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"`
}

// Nop drops every event. Used in tests and when no brokers are configured.
type Nop struct{}

func (Nop) MessageCreated(context.Context, model.Message) {}
