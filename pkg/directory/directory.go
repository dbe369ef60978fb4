// Package directory is the messaging core's view of the platform's user
// accounts: identity lookup, credential checks for token issuance, and the
// chat search box.
package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/DairyFarmers/dfi-chat/pkg/model"
)

var (
	ErrUserNotFound       = errors.New("directory: user not found")
	ErrUserExists         = errors.New("directory: email already registered")
	ErrInvalidCredentials = errors.New("directory: invalid credentials")
)

// SearchLimit caps search_users results.
const SearchLimit = 10

// MinQueryLength is the shortest query that returns anything at all.
const MinQueryLength = 2

type Directory interface {
	Lookup(ctx context.Context, id string) (model.User, error)
	LookupByEmail(ctx context.Context, email string) (model.User, error)

	// Register creates an account with a bcrypt-hashed password and a fresh
	// uuid. Fails with ErrUserExists on a duplicate email.
	Register(ctx context.Context, name, email, password string) (model.User, error)

	// Authenticate checks credentials for token issuance.
	Authenticate(ctx context.Context, email, password string) (model.User, error)

	// SearchUsers returns up to SearchLimit users whose name or email
	// contains the query, case-insensitively, excluding excludingID.
	// Queries shorter than MinQueryLength return nothing.
	SearchUsers(ctx context.Context, query, excludingID string) ([]model.User, error)
}

// matches reports whether a user's name or email contains the
// already-lowercased query.
func matches(u model.User, loweredQuery string) bool {
	return strings.Contains(strings.ToLower(u.Name), loweredQuery) ||
		strings.Contains(strings.ToLower(u.Email), loweredQuery)
}
