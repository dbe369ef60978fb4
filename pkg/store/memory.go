package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DairyFarmers/dfi-chat/pkg/model"
	"github.com/DairyFarmers/dfi-chat/pkg/snowflake"
)

// MemoryStore is the in-process Store implementation, used by tests and
// single-node development setups. Same contract as ScyllaStore, guarded by
// one mutex.
type MemoryStore struct {
	mu    sync.Mutex
	ids   *snowflake.Node
	rooms map[string][]*model.Message
}

func NewMemoryStore() *MemoryStore {
	node, err := snowflake.NewNode(0)
	if err != nil {
		// Unreachable: node 0 is always in range.
		panic(err)
	}
	return &MemoryStore{ids: node, rooms: make(map[string][]*model.Message)}
}

func (s *MemoryStore) Send(ctx context.Context, sender, receiver model.User, text string) (model.Message, error) {
	if sender.ID == receiver.ID {
		return model.Message{}, ErrSelfMessage
	}
	if text == "" {
		return model.Message{}, ErrEmptyText
	}

	msg := model.Message{
		ID:        s.ids.Generate(),
		Sender:    sender,
		Receiver:  receiver,
		Text:      text,
		Timestamp: time.Now().UTC(),
		IsRead:    false,
	}

	room := model.RoomKey(sender.ID, receiver.ID)
	s.mu.Lock()
	s.rooms[room] = append(s.rooms[room], &msg)
	s.mu.Unlock()

	return msg, nil
}

func (s *MemoryStore) History(ctx context.Context, userID, counterpartID string) ([]model.Message, error) {
	room := model.RoomKey(userID, counterpartID)

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.rooms[room]
	messages := make([]model.Message, 0, len(stored))
	for _, m := range stored {
		if m.Receiver.ID == userID && !m.IsRead {
			m.IsRead = true
		}
		messages = append(messages, *m)
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

func (s *MemoryStore) ActiveChats(ctx context.Context, userID string) ([]model.ChatSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byCounterpart := make(map[string]*model.ChatSummary)
	for _, messages := range s.rooms {
		for _, m := range messages {
			var counterpart model.User
			switch userID {
			case m.Sender.ID:
				counterpart = m.Receiver
			case m.Receiver.ID:
				counterpart = m.Sender
			default:
				continue
			}

			summary, ok := byCounterpart[counterpart.ID]
			if !ok {
				summary = &model.ChatSummary{Counterpart: counterpart}
				byCounterpart[counterpart.ID] = summary
			}
			if !m.Timestamp.Before(summary.LastMessageAt) {
				summary.LastMessageAt = m.Timestamp
				summary.LastMessageText = m.Text
			}
			if m.Receiver.ID == userID && !m.IsRead {
				summary.UnreadCount++
			}
		}
	}

	summaries := make([]model.ChatSummary, 0, len(byCounterpart))
	for _, summary := range byCounterpart {
		summaries = append(summaries, *summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})
	return summaries, nil
}

func (s *MemoryStore) UnreadCount(ctx context.Context, userID, counterpartID string) (int, error) {
	room := model.RoomKey(userID, counterpartID)

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, m := range s.rooms[room] {
		if m.Receiver.ID == userID && m.Sender.ID == counterpartID && !m.IsRead {
			count++
		}
	}
	return count, nil
}
