package model

// FrameType discriminates websocket frames in both directions.
type FrameType string

const (
	FrameChatMessage FrameType = "chat_message"
	FrameError       FrameType = "error"
)

// Envelope is the raw inbound frame. Only Type is guaranteed; the remaining
// fields are validated per frame kind before anything is acted on.
type Envelope struct {
	Type       FrameType `json:"type"`
	ReceiverID string    `json:"receiver_id"`
	Text       string    `json:"text"`
}

// ChatMessageFrame is the validated payload of a "chat_message" frame.
type ChatMessageFrame struct {
	ReceiverID string `validate:"required"`
	Text       string `validate:"required"`
}

// MessageEvent is the outbound frame carrying a persisted message to every
// session subscribed to the room.
type MessageEvent struct {
	Type FrameType `json:"type"`
	Message
}

// ErrorFrame reports a per-frame failure back to the sender. The connection
// stays open; only handshake failures terminate a session.
type ErrorFrame struct {
	Type    FrameType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// NewMessageEvent wraps a persisted message for fan-out.
func NewMessageEvent(m Message) MessageEvent {
	return MessageEvent{Type: FrameChatMessage, Message: m}
}

// NewErrorFrame builds a sender-visible error frame.
func NewErrorFrame(code, message string) ErrorFrame {
	return ErrorFrame{Type: FrameError, Code: code, Message: message}
}
