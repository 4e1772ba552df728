package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/atinyakov/DayKeeper/internal/kv"
	"github.com/atinyakov/DayKeeper/internal/models"
)

// CredentialRepository keeps the list of registered users under models.UsersKey.
// Every write reads and rewrites the whole list under mu.
type CredentialRepository struct {
	// Store is the durable backend holding the list.
	Store kv.Store

	mu sync.Mutex
}

// NewCredentialRepository creates a CredentialRepository on store.
func NewCredentialRepository(store kv.Store) *CredentialRepository {
	return &CredentialRepository{Store: store}
}

// List returns every registered credential in registration order.
// An absent list is empty.
func (r *CredentialRepository) List(ctx context.Context) ([]models.UserCredential, error) {
	users := []models.UserCredential{}
	if _, err := readJSON(ctx, r.Store, models.UsersKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUser returns the first credential whose email matches exactly.
func (r *CredentialRepository) FindUser(ctx context.Context, email string) (*models.UserCredential, bool, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, false, err
	}
	for i := range users {
		if users[i].Email == email {
			return &users[i], true, nil
		}
	}
	return nil, false, nil
}

// RegisterUser appends cred to the list. It returns models.ErrAlreadyExists if
// the email is already registered and leaves the list untouched.
func (r *CredentialRepository) RegisterUser(ctx context.Context, cred models.UserCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Email == cred.Email {
			return fmt.Errorf("register %s: %w", cred.Email, models.ErrAlreadyExists)
		}
	}
	users = append(users, cred)
	return writeJSON(ctx, r.Store, models.UsersKey, users)
}
