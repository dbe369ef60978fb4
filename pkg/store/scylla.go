package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"github.com/samber/lo"

	"github.com/DairyFarmers/dfi-chat/pkg/db"
	"github.com/DairyFarmers/dfi-chat/pkg/model"
	"github.com/DairyFarmers/dfi-chat/pkg/snowflake"
)

// markReadChunk bounds the size of a single logged batch when flipping
// is_read flags.
const markReadChunk = 100

// ScyllaStore persists messages in the dm_messages table, partitioned by
// room key. Conversation summaries live in user_conversations, one row per
// (user, counterpart) direction, exactly as the gateway's predecessor kept
// them.
type ScyllaStore struct {
	db    *db.Session
	users UserLookup
	ids   *snowflake.Node
	log   *slog.Logger
}

func NewScyllaStore(session *db.Session, users UserLookup, ids *snowflake.Node, log *slog.Logger) *ScyllaStore {
	return &ScyllaStore{db: session, users: users, ids: ids, log: log}
}

func (s *ScyllaStore) Send(ctx context.Context, sender, receiver model.User, text string) (model.Message, error) {
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

	const insert = `INSERT INTO dm_messages (room_key, id, sender_id, receiver_id, text, created_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?, false)`
	if err := s.db.Query(insert, room, msg.ID, sender.ID, receiver.ID, text, msg.Timestamp).WithContext(ctx).Exec(); err != nil {
		return model.Message{}, fmt.Errorf("insert message: %w", err)
	}

	const upsert = `INSERT INTO user_conversations (user_id, other_user_id, last_message, last_updated)
		VALUES (?, ?, ?, ?)`
	if err := s.db.Query(upsert, sender.ID, receiver.ID, text, msg.Timestamp).WithContext(ctx).Exec(); err != nil {
		return model.Message{}, fmt.Errorf("update sender conversation: %w", err)
	}
	if err := s.db.Query(upsert, receiver.ID, sender.ID, text, msg.Timestamp).WithContext(ctx).Exec(); err != nil {
		return model.Message{}, fmt.Errorf("update receiver conversation: %w", err)
	}

	return msg, nil
}

func (s *ScyllaStore) History(ctx context.Context, userID, counterpartID string) ([]model.Message, error) {
	user, err := s.users.Lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	counterpart, err := s.users.Lookup(ctx, counterpartID)
	if err != nil {
		return nil, err
	}
	participants := map[string]model.User{user.ID: user, counterpart.ID: counterpart}

	room := model.RoomKey(userID, counterpartID)
	const sel = `SELECT id, sender_id, receiver_id, text, created_at, is_read FROM dm_messages WHERE room_key = ?`
	iter := s.db.Query(sel, room).WithContext(ctx).Iter()

	var (
		messages  []model.Message
		unreadIDs []int64
	)
	var (
		id                   int64
		senderID, receiverID string
		text                 string
		createdAt            time.Time
		isRead               bool
	)
	for iter.Scan(&id, &senderID, &receiverID, &text, &createdAt, &isRead) {
		if receiverID == userID && !isRead {
			unreadIDs = append(unreadIDs, id)
			isRead = true
		}
		messages = append(messages, model.Message{
			ID:        id,
			Sender:    participants[senderID],
			Receiver:  participants[receiverID],
			Text:      text,
			Timestamp: createdAt,
			IsRead:    isRead,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	if err := s.markRead(ctx, room, unreadIDs); err != nil {
		return nil, err
	}

	return messages, nil
}

// markRead flips is_read for the given ids in chunked logged batches. Flags
// only ever go from false to true here; nothing in the store writes the
// other direction.
func (s *ScyllaStore) markRead(ctx context.Context, room string, ids []int64) error {
	for _, chunk := range lo.Chunk(ids, markReadChunk) {
		batch := s.db.NewBatch(gocql.LoggedBatch).WithContext(ctx)
		for _, id := range chunk {
			batch.Query(`UPDATE dm_messages SET is_read = true WHERE room_key = ? AND id = ?`, room, id)
		}
		if err := s.db.ExecuteBatch(batch); err != nil {
			return fmt.Errorf("mark read: %w", err)
		}
	}
	if len(ids) > 0 {
		s.log.Debug("marked messages read", "room", room, "count", len(ids))
	}
	return nil
}

func (s *ScyllaStore) ActiveChats(ctx context.Context, userID string) ([]model.ChatSummary, error) {
	const sel = `SELECT other_user_id, last_message, last_updated FROM user_conversations WHERE user_id = ?`
	iter := s.db.Query(sel, userID).WithContext(ctx).Iter()

	var summaries []model.ChatSummary
	var (
		otherID     string
		lastMessage string
		lastUpdated time.Time
	)
	for iter.Scan(&otherID, &lastMessage, &lastUpdated) {
		summaries = append(summaries, model.ChatSummary{
			Counterpart:     model.User{ID: otherID},
			LastMessageText: lastMessage,
			LastMessageAt:   lastUpdated,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("read conversations: %w", err)
	}

	for i := range summaries {
		counterpart, err := s.users.Lookup(ctx, summaries[i].Counterpart.ID)
		if err != nil {
			return nil, err
		}
		summaries[i].Counterpart = counterpart

		unread, err := s.UnreadCount(ctx, userID, counterpart.ID)
		if err != nil {
			return nil, err
		}
		summaries[i].UnreadCount = unread
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})
	return summaries, nil
}

func (s *ScyllaStore) UnreadCount(ctx context.Context, userID, counterpartID string) (int, error) {
	room := model.RoomKey(userID, counterpartID)
	// Filtering stays inside the single room partition, so this does not
	// fan out across the cluster.
	const sel = `SELECT COUNT(*) FROM dm_messages WHERE room_key = ? AND receiver_id = ? AND is_read = false ALLOW FILTERING`

	var count int
	if err := s.db.Query(sel, room, userID).WithContext(ctx).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}
