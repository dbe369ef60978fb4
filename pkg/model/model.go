package model

import "time"

// User is the identity the messaging core references. Accounts are owned by
// the wider operations platform; only id, name and email matter here.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Message is a single direct message between two users. Everything except
// IsRead is immutable after creation; IsRead only ever flips false -> true,
// in bulk, when the receiver fetches the conversation history.
type Message struct {
	ID        int64     `json:"id"`
	Sender    User      `json:"sender"`
	Receiver  User      `json:"receiver"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsRead    bool      `json:"is_read"`
}

// ChatSummary is one row of a user's active-chats listing.
type ChatSummary struct {
	Counterpart     User      `json:"user"`
	LastMessageText string    `json:"last_message"`
	UnreadCount     int       `json:"unread_count"`
	LastMessageAt   time.Time `json:"timestamp"`
}

// RoomKey derives the canonical room identifier for the conversation between
// two users. The pair is sorted first so both sides always land in the same
// room: RoomKey(a, b) == RoomKey(b, a).
func RoomKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "chat_" + a + "_" + b
}
