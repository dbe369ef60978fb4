package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Issue_And_Verify_Roundtrip(t *testing.T) {
	req := require.New(t)

	svc := NewTokenService("test-secret", time.Hour)
	token, err := svc.Issue("user-1", "Alice")
	req.NoError(err)

	identity, err := svc.Verify(token)
	req.NoError(err)
	req.Equal("user-1", identity.UserID)
	req.Equal("Alice", identity.Name)
}

func Test_Verify_Rejects_Garbage(t *testing.T) {
	req := require.New(t)

	svc := NewTokenService("test-secret", time.Hour)
	_, err := svc.Verify("not-a-token")
	req.Error(err)
}

func Test_Verify_Rejects_Wrong_Secret(t *testing.T) {
	req := require.New(t)

	token, err := NewTokenService("secret-a", time.Hour).Issue("user-1", "Alice")
	req.NoError(err)

	_, err = NewTokenService("secret-b", time.Hour).Verify(token)
	req.Error(err)
}

func Test_Verify_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)

	token, err := NewTokenService("test-secret", -time.Minute).Issue("user-1", "Alice")
	req.NoError(err)

	_, err = NewTokenService("test-secret", -time.Minute).Verify(token)
	req.Error(err)
}

func Test_CredentialFromRequest_Prefers_Cookie(t *testing.T) {
	req := require.New(t)

	r := httptest.NewRequest("GET", "/ws/chat/bob", nil)
	r.Header.Add("Cookie", CookieName+"=cookie-token")
	r.Header.Set("Authorization", "Bearer header-token")
	req.Equal("cookie-token", CredentialFromRequest(r))
}

func Test_CredentialFromRequest_Bearer_Header(t *testing.T) {
	req := require.New(t)

	r := httptest.NewRequest("GET", "/ws/chat/bob", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	req.Equal("header-token", CredentialFromRequest(r))

	r = httptest.NewRequest("GET", "/ws/chat/bob", nil)
	r.Header.Set("Authorization", "bare-token")
	req.Equal("bare-token", CredentialFromRequest(r))
}

func Test_CredentialFromRequest_Query_Fallback(t *testing.T) {
	req := require.New(t)

	r := httptest.NewRequest("GET", "/ws/chat/bob?token=query-token", nil)
	req.Equal("query-token", CredentialFromRequest(r))
}

func Test_CredentialFromRequest_Empty_When_Absent(t *testing.T) {
	req := require.New(t)

	r := httptest.NewRequest("GET", "/ws/chat/bob", nil)
	req.Empty(CredentialFromRequest(r))
}
