package directory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"github.com/DairyFarmers/dfi-chat/pkg/model"
)

// MemoryDirectory backs tests and single-node development.
type MemoryDirectory struct {
	mu      sync.RWMutex
	byID    map[string]model.User
	byEmail map[string]string
	hashes  map[string]string
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byID:    make(map[string]model.User),
		byEmail: make(map[string]string),
		hashes:  make(map[string]string),
	}
}

// Add seeds an existing user without credentials. Test helper.
func (d *MemoryDirectory) Add(u model.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byID[u.ID] = u
	if u.Email != "" {
		d.byEmail[strings.ToLower(u.Email)] = u.ID
	}
}

func (d *MemoryDirectory) Lookup(ctx context.Context, id string) (model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byID[id]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

func (d *MemoryDirectory) LookupByEmail(ctx context.Context, email string) (model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return d.byID[id], nil
}

func (d *MemoryDirectory) Register(ctx context.Context, name, email, password string) (model.User, error) {
	email = strings.ToLower(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.byEmail[email]; exists {
		return model.User{}, ErrUserExists
	}

	u := model.User{ID: uuid.NewString(), Name: name, Email: email}
	d.byID[u.ID] = u
	d.byEmail[email] = u.ID
	d.hashes[u.ID] = string(hash)
	return u, nil
}

func (d *MemoryDirectory) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	d.mu.RLock()
	id, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		d.mu.RUnlock()
		return model.User{}, ErrInvalidCredentials
	}
	u := d.byID[id]
	hash := d.hashes[id]
	d.mu.RUnlock()

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (d *MemoryDirectory) SearchUsers(ctx context.Context, query, excludingID string) ([]model.User, error) {
	if len(query) < MinQueryLength {
		return nil, nil
	}
	lowered := strings.ToLower(query)

	d.mu.RLock()
	all := lo.Values(d.byID)
	d.mu.RUnlock()

	found := lo.Filter(all, func(candidate model.User, _ int) bool {
		return candidate.ID != excludingID && matches(candidate, lowered)
	})
	if len(found) > SearchLimit {
		found = found[:SearchLimit]
	}
	return found, nil
}
