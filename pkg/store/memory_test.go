package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DairyFarmers/dfi-chat/pkg/model"
)

var (
	alice = model.User{ID: "alice", Name: "Alice", Email: "alice@example.com"}
	bob   = model.User{ID: "bob", Name: "Bob", Email: "bob@example.com"}
	carol = model.User{ID: "carol", Name: "Carol", Email: "carol@example.com"}
)

func Test_Send_Assigns_Id_Timestamp_And_Unread(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()

	msg, err := s.Send(context.Background(), alice, bob, "hello")
	req.NoError(err)
	req.NotZero(msg.ID)
	req.False(msg.Timestamp.IsZero())
	req.False(msg.IsRead)
	req.Equal(alice, msg.Sender)
	req.Equal(bob, msg.Receiver)
}

func Test_Send_Rejects_Self_And_Empty(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()

	_, err := s.Send(context.Background(), alice, alice, "hi me")
	req.ErrorIs(err, ErrSelfMessage)

	_, err = s.Send(context.Background(), alice, bob, "")
	req.ErrorIs(err, ErrEmptyText)
}

func Test_History_Is_Ordered_And_Symmetric(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Send(ctx, alice, bob, "one")
	req.NoError(err)
	_, err = s.Send(ctx, bob, alice, "two")
	req.NoError(err)
	_, err = s.Send(ctx, alice, bob, "three")
	req.NoError(err)

	fromAlice, err := s.History(ctx, alice.ID, bob.ID)
	req.NoError(err)
	req.Len(fromAlice, 3)
	for i := 1; i < len(fromAlice); i++ {
		req.False(fromAlice[i].Timestamp.Before(fromAlice[i-1].Timestamp))
	}

	fromBob, err := s.History(ctx, bob.ID, alice.ID)
	req.NoError(err)
	req.Len(fromBob, 3)
	for i := range fromAlice {
		req.Equal(fromAlice[i].ID, fromBob[i].ID)
		req.Equal(fromAlice[i].Text, fromBob[i].Text)
	}
}

func Test_History_Marks_Incoming_Read(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Send(ctx, alice, bob, "unread for bob")
	req.NoError(err)

	// Sender fetching history does not touch the receiver's unread state.
	_, err = s.History(ctx, alice.ID, bob.ID)
	req.NoError(err)
	unread, err := s.UnreadCount(ctx, bob.ID, alice.ID)
	req.NoError(err)
	req.Equal(1, unread)

	// Receiver fetching history is the read.
	messages, err := s.History(ctx, bob.ID, alice.ID)
	req.NoError(err)
	req.Len(messages, 1)
	req.True(messages[0].IsRead)

	unread, err = s.UnreadCount(ctx, bob.ID, alice.ID)
	req.NoError(err)
	req.Zero(unread)
}

func Test_Read_State_Never_Reverts(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Send(ctx, alice, bob, "first")
	req.NoError(err)
	_, err = s.History(ctx, bob.ID, alice.ID)
	req.NoError(err)

	// More traffic and more reads, in both directions.
	_, err = s.Send(ctx, bob, alice, "second")
	req.NoError(err)
	_, err = s.History(ctx, alice.ID, bob.ID)
	req.NoError(err)
	_, err = s.History(ctx, bob.ID, alice.ID)
	req.NoError(err)

	messages, err := s.History(ctx, alice.ID, bob.ID)
	req.NoError(err)
	for _, m := range messages {
		req.True(m.IsRead)
	}
}

func Test_UnreadCount_Counts_One_Direction_Only(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Send(ctx, alice, bob, "to bob 1")
	req.NoError(err)
	_, err = s.Send(ctx, alice, bob, "to bob 2")
	req.NoError(err)
	_, err = s.Send(ctx, bob, alice, "to alice")
	req.NoError(err)

	bobUnread, err := s.UnreadCount(ctx, bob.ID, alice.ID)
	req.NoError(err)
	req.Equal(2, bobUnread)

	aliceUnread, err := s.UnreadCount(ctx, alice.ID, bob.ID)
	req.NoError(err)
	req.Equal(1, aliceUnread)
}

func Test_ActiveChats_Lists_Each_Counterpart_Once_Sorted_Desc(t *testing.T) {
	req := require.New(t)
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Send(ctx, alice, bob, "bob 1")
	req.NoError(err)
	time.Sleep(2 * time.Millisecond)
	_, err = s.Send(ctx, alice, bob, "bob 2")
	req.NoError(err)
	time.Sleep(2 * time.Millisecond)
	_, err = s.Send(ctx, carol, alice, "carol 1")
	req.NoError(err)

	chats, err := s.ActiveChats(ctx, alice.ID)
	req.NoError(err)
	req.Len(chats, 2)

	// Carol's message is the most recent conversation.
	req.Equal(carol.ID, chats[0].Counterpart.ID)
	req.Equal("carol 1", chats[0].LastMessageText)
	req.Equal(bob.ID, chats[1].Counterpart.ID)
	req.Equal("bob 2", chats[1].LastMessageText)

	for i := 1; i < len(chats); i++ {
		req.False(chats[i].LastMessageAt.After(chats[i-1].LastMessageAt))
	}

	// Summary unread counts agree with UnreadCount.
	for _, c := range chats {
		unread, err := s.UnreadCount(ctx, alice.ID, c.Counterpart.ID)
		req.NoError(err)
		req.Equal(unread, c.UnreadCount)
	}
}
