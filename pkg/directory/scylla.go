package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"github.com/DairyFarmers/dfi-chat/pkg/db"
	"github.com/DairyFarmers/dfi-chat/pkg/model"
)

// ScyllaDirectory keeps accounts in the users table with a users_by_email
// lookup table, since the base table is only queryable by id.
type ScyllaDirectory struct {
	db  *db.Session
	log *slog.Logger
}

func NewScyllaDirectory(session *db.Session, log *slog.Logger) *ScyllaDirectory {
	return &ScyllaDirectory{db: session, log: log}
}

func (d *ScyllaDirectory) Lookup(ctx context.Context, id string) (model.User, error) {
	var u model.User
	const sel = `SELECT id, name, email FROM users WHERE id = ?`
	if err := d.db.Query(sel, id).WithContext(ctx).Scan(&u.ID, &u.Name, &u.Email); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

func (d *ScyllaDirectory) LookupByEmail(ctx context.Context, email string) (model.User, error) {
	var id string
	const sel = `SELECT user_id FROM users_by_email WHERE email = ?`
	if err := d.db.Query(sel, strings.ToLower(email)).WithContext(ctx).Scan(&id); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return model.User{}, ErrUserNotFound
		}
		return model.User{}, fmt.Errorf("lookup email: %w", err)
	}
	return d.Lookup(ctx, id)
}

func (d *ScyllaDirectory) Register(ctx context.Context, name, email, password string) (model.User, error) {
	email = strings.ToLower(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := model.User{ID: uuid.NewString(), Name: name, Email: email}

	// Claim the email first; IF NOT EXISTS makes the claim atomic.
	var existingID string
	const claim = `INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`
	applied, err := d.db.Query(claim, email, u.ID).WithContext(ctx).ScanCAS(&existingID)
	if err != nil {
		return model.User{}, fmt.Errorf("claim email: %w", err)
	}
	if !applied {
		return model.User{}, ErrUserExists
	}

	const insert = `INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`
	if err := d.db.Query(insert, u.ID, name, email, string(hash), time.Now().UTC()).WithContext(ctx).Exec(); err != nil {
		return model.User{}, fmt.Errorf("insert user: %w", err)
	}

	d.log.Info("user registered", "user_id", u.ID)
	return u, nil
}

func (d *ScyllaDirectory) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	var id string
	const selEmail = `SELECT user_id FROM users_by_email WHERE email = ?`
	if err := d.db.Query(selEmail, strings.ToLower(email)).WithContext(ctx).Scan(&id); err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("lookup email: %w", err)
	}

	var u model.User
	var hash string
	const selUser = `SELECT id, name, email, password_hash FROM users WHERE id = ?`
	if err := d.db.Query(selUser, id).WithContext(ctx).Scan(&u.ID, &u.Name, &u.Email, &hash); err != nil {
		return model.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (d *ScyllaDirectory) SearchUsers(ctx context.Context, query, excludingID string) ([]model.User, error) {
	if len(query) < MinQueryLength {
		return nil, nil
	}
	lowered := strings.ToLower(query)

	// The directory is internal staff, a few hundred rows at most.
	const sel = `SELECT id, name, email FROM users`
	iter := d.db.Query(sel).WithContext(ctx).Iter()

	var all []model.User
	var u model.User
	for iter.Scan(&u.ID, &u.Name, &u.Email) {
		all = append(all, u)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	found := lo.Filter(all, func(candidate model.User, _ int) bool {
		return candidate.ID != excludingID && matches(candidate, lowered)
	})
	if len(found) > SearchLimit {
		found = found[:SearchLimit]
	}
	return found, nil
}
