package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/atinyakov/DayKeeper/internal/kv"
	"github.com/atinyakov/DayKeeper/internal/models"
)

// SessionRepository keeps the logged-in identity under models.SessionKey in a
// session-scoped store.
type SessionRepository struct {
	Store kv.Store
}

// NewSessionRepository creates a SessionRepository on the session store.
func NewSessionRepository(store kv.Store) *SessionRepository {
	return &SessionRepository{Store: store}
}

// Current returns the stored identity, or false when nobody is logged in.
func (r *SessionRepository) Current(ctx context.Context) (models.SessionIdentity, bool, error) {
	var id models.SessionIdentity
	ok, err := readJSON(ctx, r.Store, models.SessionKey, &id)
	if err != nil || !ok || id.Email == "" {
		return models.SessionIdentity{}, false, err
	}
	return id, true, nil
}

// Set stores id as the current identity.
func (r *SessionRepository) Set(ctx context.Context, id models.SessionIdentity) error {
	return writeJSON(ctx, r.Store, models.SessionKey, id)
}

// Clear removes the current identity.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := r.Store.Remove(ctx, models.SessionKey); err != nil {
		return errors.Join(models.ErrStoreUnavailable, fmt.Errorf("remove %s: %w", models.SessionKey, err))
	}
	return nil
}
