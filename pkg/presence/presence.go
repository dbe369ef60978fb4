// Package presence tracks which users currently hold at least one live
// chat session.
package presence

import "context"

// Tracker records session liveness per user. A user is online while any of
// their sessions is subscribed.
type Tracker interface {
	Online(ctx context.Context, userID, sessionID string) error
	Offline(ctx context.Context, userID, sessionID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
}

// Nop reports everyone offline. Used in tests and redis-less setups.
type Nop struct{}

func (Nop) Online(context.Context, string, string) error  { return nil }
func (Nop) Offline(context.Context, string, string) error { return nil }
func (Nop) IsOnline(context.Context, string) (bool, error) {
	return false, nil
}
