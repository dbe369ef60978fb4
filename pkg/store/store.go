// Package store owns the durable message log and its read-state
// bookkeeping. Writes are append-only; the only mutation ever applied to a
// stored message is the bulk false -> true flip of is_read when the
// receiver fetches history, so read state is monotonic by construction.
package store

import (
	"context"
	"errors"

	"github.com/DairyFarmers/dfi-chat/pkg/model"
)

var (
	ErrSelfMessage = errors.New("store: sender and receiver are the same user")
	ErrEmptyText   = errors.New("store: message text is empty")
)

// Store is the persistence port consumed by sessions and the read-side API.
// Implementations provide their own concurrency safety for Send and the
// bulk mark-read inside History.
type Store interface {
	// Send appends a message with is_read=false and a store-assigned id and
	// timestamp, and refreshes both participants' conversation summaries.
	Send(ctx context.Context, sender, receiver model.User, text string) (model.Message, error)

	// History returns every message between the two users, both directions,
	// ascending by timestamp. Fetching history is what "reading" means: all
	// unread messages from counterpart to user are marked read in one bulk
	// update before the list is returned.
	History(ctx context.Context, userID, counterpartID string) ([]model.Message, error)

	// ActiveChats lists one summary per counterpart the user has exchanged
	// messages with, newest conversation first.
	ActiveChats(ctx context.Context, userID string) ([]model.ChatSummary, error)

	// UnreadCount reports how many messages from counterpart to user are
	// still unread.
	UnreadCount(ctx context.Context, userID, counterpartID string) (int, error)
}

// UserLookup resolves bare user ids back to full users when reading
// messages out of storage. Satisfied by the directory implementations.
type UserLookup interface {
	Lookup(ctx context.Context, id string) (model.User, error)
}
