// Package gateway accepts websocket connections, runs the handshake, and
// hands verified connections to sessions.
package gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/DairyFarmers/dfi-chat/pkg/auth"
	"github.com/DairyFarmers/dfi-chat/pkg/directory"
	"github.com/DairyFarmers/dfi-chat/pkg/notify"
	"github.com/DairyFarmers/dfi-chat/pkg/presence"
	"github.com/DairyFarmers/dfi-chat/pkg/room"
	"github.com/DairyFarmers/dfi-chat/pkg/session"
	"github.com/DairyFarmers/dfi-chat/pkg/store"
)

// CloseUnauthenticated is the reserved close code for every handshake
// failure: missing or invalid credential, missing counterpart, or a
// counterpart that does not resolve. The server never retries; the client
// must re-handshake.
const CloseUnauthenticated = 4001

const closeWriteWait = 5 * time.Second

// DefaultSendBuffer is the per-session outbound queue depth. When a
// consumer falls this far behind it is evicted rather than allowed to stall
// fan-out.
const DefaultSendBuffer = 256

type Gateway struct {
	verifier   auth.Verifier
	users      directory.Directory
	store      store.Store
	broker     room.Broker
	notifier   notify.Notifier
	tracker    presence.Tracker
	sendBuffer int
	log        *slog.Logger
	upgrader   websocket.Upgrader
}

type Config struct {
	Verifier   auth.Verifier
	Users      directory.Directory
	Store      store.Store
	Broker     room.Broker
	Notifier   notify.Notifier
	Tracker    presence.Tracker
	SendBuffer int
	Log        *slog.Logger
}

func New(cfg Config) *Gateway {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = DefaultSendBuffer
	}
	return &Gateway{
		verifier:   cfg.Verifier,
		users:      cfg.Users,
		store:      cfg.Store,
		broker:     cfg.Broker,
		notifier:   cfg.Notifier,
		tracker:    cfg.Tracker,
		sendBuffer: cfg.SendBuffer,
		log:        cfg.Log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The platform fronts this with its own origin checks.
				return true
			},
		},
	}
}

// ServeHTTP handles GET /ws/chat/{counterpart_id}. The credential is read
// once, here; frames on the accepted connection are never re-authenticated.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	credential := auth.CredentialFromRequest(r)
	counterpartID := r.PathValue("counterpart_id")

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	// Handshake runs after the upgrade so failures can carry the reserved
	// close code instead of an HTTP status.
	if credential == "" {
		g.reject(conn, "no credential presented")
		return
	}
	identity, err := g.verifier.Verify(credential)
	if err != nil {
		g.reject(conn, "invalid credential")
		return
	}
	user, err := g.users.Lookup(r.Context(), identity.UserID)
	if err != nil {
		g.reject(conn, "unknown user")
		return
	}

	if counterpartID == "" || counterpartID == user.ID {
		g.reject(conn, "malformed counterpart")
		return
	}
	counterpart, err := g.users.Lookup(r.Context(), counterpartID)
	if err != nil {
		g.reject(conn, "unknown counterpart")
		return
	}

	sess := session.New(session.Config{
		Conn:        conn,
		User:        user,
		Counterpart: counterpart,
		Broker:      g.broker,
		Store:       g.store,
		Notifier:    g.notifier,
		Tracker:     g.tracker,
		SendBuffer:  g.sendBuffer,
		Log:         g.log,
	})

	// Acceptance implies subscription: by the time the client sees the
	// connection as open, it is joined to the room.
	sess.Subscribe()
	go sess.Run()
}

// reject closes a fresh connection with the unauthenticated close code. No
// session exists yet and no room was joined.
func (g *Gateway) reject(conn *websocket.Conn, reason string) {
	g.log.Warn("handshake rejected", "remote", conn.RemoteAddr().String(), "reason", reason)

	msg := websocket.FormatCloseMessage(CloseUnauthenticated, "unauthenticated")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeWriteWait))
	_ = conn.Close()
}
