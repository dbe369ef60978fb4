package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName is where browser clients carry the chat credential. Websocket
// handshakes read it once; frames are never re-authenticated.
const CookieName = "auth_token"

type contextKey string

const identityKey contextKey = "identity"

// CredentialFromRequest extracts the presented credential from a request.
// Cookie first, then Authorization header (with or without the Bearer
// prefix), then the token query parameter for clients that cannot set
// headers on websocket dials. Empty string when nothing is presented.
func CredentialFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}

	if h := r.Header.Get("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
			return h[7:]
		}
		return h
	}

	return r.URL.Query().Get("token")
}

// WithIdentity stores a verified identity on the request context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the identity placed by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
