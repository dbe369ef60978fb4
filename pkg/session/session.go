// Package session ties one authenticated websocket connection to the room
// registry and the message store.
package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/DairyFarmers/dfi-chat/pkg/model"
	"github.com/DairyFarmers/dfi-chat/pkg/notify"
	"github.com/DairyFarmers/dfi-chat/pkg/presence"
	"github.com/DairyFarmers/dfi-chat/pkg/room"
	"github.com/DairyFarmers/dfi-chat/pkg/store"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Ping period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size.
	maxFrameSize = 4096

	// Budget for store calls made on behalf of one frame. Detached from the
	// connection's lifetime: an in-flight persist finishes even if the
	// client drops mid-call.
	persistTimeout = 10 * time.Second
)

// State tracks a session through its lifecycle. There is no way out of
// Closed; a dropped connection starts over with a fresh handshake.
type State int32

const (
	Connecting State = iota
	Authenticated
	Subscribed
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Authenticated:
		return "authenticated"
	case Subscribed:
		return "subscribed"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is the live state of one connection: the authenticated user, the
// counterpart fixed at handshake time, and the room both map to.
type Session struct {
	ID string

	user        model.User
	counterpart model.User
	roomKey     string

	conn     *websocket.Conn
	send     chan []byte
	broker   room.Broker
	store    store.Store
	notifier notify.Notifier
	tracker  presence.Tracker
	validate *validator.Validate
	log      *slog.Logger

	state atomic.Int32

	sendMu    sync.RWMutex
	sendOpen  bool
	closeOnce sync.Once
}

type Config struct {
	Conn        *websocket.Conn
	User        model.User
	Counterpart model.User
	Broker      room.Broker
	Store       store.Store
	Notifier    notify.Notifier
	Tracker     presence.Tracker
	SendBuffer  int
	Log         *slog.Logger
}

func New(cfg Config) *Session {
	id := uuid.NewString()
	roomKey := model.RoomKey(cfg.User.ID, cfg.Counterpart.ID)
	s := &Session{
		ID:          id,
		user:        cfg.User,
		counterpart: cfg.Counterpart,
		roomKey:     roomKey,
		conn:        cfg.Conn,
		send:        make(chan []byte, cfg.SendBuffer),
		broker:      cfg.Broker,
		store:       cfg.Store,
		notifier:    cfg.Notifier,
		tracker:     cfg.Tracker,
		validate:    validator.New(),
		sendOpen:    true,
		log:         cfg.Log.With("session_id", id, "user_id", cfg.User.ID, "room", roomKey),
	}
	s.state.Store(int32(Authenticated))
	return s
}

func (s *Session) State() State { return State(s.state.Load()) }
func (s *Session) RoomKey() string { return s.roomKey }

// Subscribe joins the room and marks the user online. From the client's
// point of view this is part of connection acceptance.
func (s *Session) Subscribe() {
	s.broker.Join(s.roomKey, s)
	if err := s.tracker.Online(context.Background(), s.user.ID, s.ID); err != nil {
		s.log.Warn("presence online failed", "error", err)
	}
	s.state.Store(int32(Subscribed))
	s.log.Info("session subscribed")
}

// Run drives the session until the connection dies. Blocks; callers start
// it in the connection's goroutine.
func (s *Session) Run() {
	go s.writePump()
	s.readPump()
}

// Send queues a fan-out payload. Reports false when the buffer is full or
// the session is closed, which the registry treats as eviction grounds.
// Implements room.Subscriber.
func (s *Session) Send(payload []byte) bool {
	s.sendMu.RLock()
	defer s.sendMu.RUnlock()

	if !s.sendOpen {
		return false
	}
	select {
	case s.send <- payload:
		return true
	default:
		return false
	}
}

// Close tears the session down: unsubscribe first, then release the queue
// and the connection. Safe to call any number of times, from the read pump,
// the registry, or the gateway.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(Closed))
		s.broker.Leave(s.roomKey, s)
		if err := s.tracker.Offline(context.Background(), s.user.ID, s.ID); err != nil {
			s.log.Warn("presence offline failed", "error", err)
		}

		s.sendMu.Lock()
		s.sendOpen = false
		close(s.send)
		s.sendMu.Unlock()

		_ = s.conn.Close()
		s.log.Info("session closed")
	})
}

// readPump owns inbound frames. One goroutine per connection, so frames
// from a single sender are handled, persisted, and published in arrival
// order.
func (s *Session) readPump() {
	defer s.Close()

	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.Warn("read failed", "error", err)
			}
			return
		}

		var env model.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.sendError("invalid_json", "frame is not valid JSON")
			continue
		}

		switch env.Type {
		case model.FrameChatMessage:
			s.handleChatMessage(env)
		default:
			// Unknown frame kinds are not an error.
			s.log.Debug("ignoring frame", "type", env.Type)
		}
	}
}

// handleChatMessage validates, persists, fans out, and notifies. Every
// failure is converted to an error frame for this sender; the connection
// stays open.
//
// Persist and publish are two separate steps. A crash between them leaves
// the message durably stored but undelivered in real time; the receiver
// picks it up on the next history fetch. At-least-persisted,
// best-effort-delivered.
func (s *Session) handleChatMessage(env model.Envelope) {
	frame := model.ChatMessageFrame{ReceiverID: env.ReceiverID, Text: env.Text}
	if err := s.validate.Struct(frame); err != nil {
		s.sendError("missing_fields", "receiver_id and text are required")
		return
	}

	// A session only speaks to the counterpart it was authorized for at
	// handshake time. Other conversations need their own connection.
	if frame.ReceiverID != s.counterpart.ID {
		s.sendError("unauthorized_receiver", "receiver_id does not match this connection")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	msg, err := s.store.Send(ctx, s.user, s.counterpart, frame.Text)
	if err != nil {
		s.log.Error("persist failed", "error", err)
		s.sendError("send_failed", "message could not be stored")
		return
	}

	payload, err := json.Marshal(model.NewMessageEvent(msg))
	if err != nil {
		s.log.Error("marshal message event", "message_id", msg.ID, "error", err)
		s.sendError("send_failed", "message stored but could not be delivered")
		return
	}

	s.broker.Publish(model.RoomKey(msg.Sender.ID, msg.Receiver.ID), payload)
	s.notifier.MessageCreated(ctx, msg)
}

func (s *Session) sendError(code, message string) {
	payload, err := json.Marshal(model.NewErrorFrame(code, message))
	if err != nil {
		return
	}
	if !s.Send(payload) {
		s.log.Warn("dropping error frame, send queue full", "code", code)
	}
}

// writePump owns the connection's write side: queued payloads plus the ping
// ticker keeping the read deadline alive.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := s.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(payload)
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
