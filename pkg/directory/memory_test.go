package directory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DairyFarmers/dfi-chat/pkg/model"
)

func Test_Register_And_Authenticate(t *testing.T) {
	req := require.New(t)
	d := NewMemoryDirectory()
	ctx := context.Background()

	u, err := d.Register(ctx, "Alice", "Alice@Example.com", "s3cret-pass")
	req.NoError(err)
	req.NotEmpty(u.ID)
	req.Equal("alice@example.com", u.Email)

	got, err := d.Authenticate(ctx, "alice@example.com", "s3cret-pass")
	req.NoError(err)
	req.Equal(u.ID, got.ID)

	_, err = d.Authenticate(ctx, "alice@example.com", "wrong")
	req.ErrorIs(err, ErrInvalidCredentials)

	_, err = d.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	req.ErrorIs(err, ErrInvalidCredentials)
}

func Test_Register_Rejects_Duplicate_Email(t *testing.T) {
	req := require.New(t)
	d := NewMemoryDirectory()
	ctx := context.Background()

	_, err := d.Register(ctx, "Alice", "alice@example.com", "s3cret-pass")
	req.NoError(err)

	_, err = d.Register(ctx, "Other Alice", "ALICE@example.com", "another-pass")
	req.ErrorIs(err, ErrUserExists)
}

func Test_Lookup_Unknown_User(t *testing.T) {
	req := require.New(t)
	d := NewMemoryDirectory()

	_, err := d.Lookup(context.Background(), "missing")
	req.ErrorIs(err, ErrUserNotFound)

	_, err = d.LookupByEmail(context.Background(), "missing@example.com")
	req.ErrorIs(err, ErrUserNotFound)
}

func Test_SearchUsers_Requires_Two_Characters(t *testing.T) {
	req := require.New(t)
	d := NewMemoryDirectory()
	d.Add(model.User{ID: "u1", Name: "Annabel", Email: "annabel@example.com"})

	found, err := d.SearchUsers(context.Background(), "a", "")
	req.NoError(err)
	req.Empty(found)

	found, err = d.SearchUsers(context.Background(), "an", "")
	req.NoError(err)
	req.Len(found, 1)
}

func Test_SearchUsers_Is_Case_Insensitive_On_Name_And_Email(t *testing.T) {
	req := require.New(t)
	d := NewMemoryDirectory()
	d.Add(model.User{ID: "u1", Name: "Annabel", Email: "ab@example.com"})
	d.Add(model.User{ID: "u2", Name: "Rob", Email: "rob.annan@example.com"})
	d.Add(model.User{ID: "u3", Name: "Zoe", Email: "zoe@example.com"})

	found, err := d.SearchUsers(context.Background(), "ANNA", "")
	req.NoError(err)
	req.Len(found, 2)
}

func Test_SearchUsers_Excludes_Caller_And_Caps_Results(t *testing.T) {
	req := require.New(t)
	d := NewMemoryDirectory()
	for i := 0; i < 15; i++ {
		d.Add(model.User{
			ID:    fmt.Sprintf("u%d", i),
			Name:  fmt.Sprintf("Annette %d", i),
			Email: fmt.Sprintf("annette%d@example.com", i),
		})
	}

	found, err := d.SearchUsers(context.Background(), "annette", "u3")
	req.NoError(err)
	req.Len(found, SearchLimit)
	for _, u := range found {
		req.NotEqual("u3", u.ID)
	}
}
