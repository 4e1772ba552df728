package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/DayKeeper/internal/kv"
	"github.com/atinyakov/DayKeeper/internal/models"
)

// failingStore returns err from every call.
type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingStore) Set(context.Context, string, string) error        { return f.err }
func (f failingStore) Remove(context.Context, string) error             { return f.err }

func TestCredentialRepository_RegisterAndFind(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	repo := NewCredentialRepository(store)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, repo.RegisterUser(ctx, models.UserCredential{Email: "a@x.com", Password: "secret1"}))
	require.NoError(t, repo.RegisterUser(ctx, models.UserCredential{Email: "b@x.com", Password: "secret2"}))

	err = repo.RegisterUser(ctx, models.UserCredential{Email: "a@x.com", Password: "other"})
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	_, exists, err := repo.FindUser(ctx, "A@x.com")
	require.NoError(t, err)
	assert.False(t, exists, "emails match case-sensitively")

	u, ok, err := repo.FindUser(ctx, "a@x.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "secret1", u.Password)

	raw, _, _ := store.Get(ctx, models.UsersKey)
	assert.JSONEq(t, `[{"email":"a@x.com","password":"secret1"},{"email":"b@x.com","password":"secret2"}]`, raw)
}

func TestCredentialRepository_ConcurrentRegister(t *testing.T) {
	ctx := context.Background()
	store, err := kv.NewFileStore(filepath.Join(t.TempDir(), "calendar.json"))
	require.NoError(t, err)
	repo := NewCredentialRepository(store)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.RegisterUser(ctx, models.UserCredential{Email: fmt.Sprintf("user%d@x.com", i), Password: "secret1"})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, n, "every acknowledged registration is kept")
}

func TestCredentialRepository_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("store unavailable", func(t *testing.T) {
		repo := NewCredentialRepository(failingStore{err: errors.New("quota exceeded")})
		_, err := repo.List(ctx)
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
		err = repo.RegisterUser(ctx, models.UserCredential{Email: "a@x.com", Password: "secret1"})
		assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	})

	t.Run("corrupt list", func(t *testing.T) {
		store := kv.NewMemoryStore()
		require.NoError(t, store.Set(ctx, models.UsersKey, "not json"))
		repo := NewCredentialRepository(store)
		_, _, err := repo.FindUser(ctx, "a@x.com")
		assert.ErrorIs(t, err, models.ErrCorruptData)
	})
}

func TestEventRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(kv.NewMemoryStore())

	events, err := repo.LoadEvents(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	want := []models.CalendarEvent{
		{Date: "2024-03-15", Title: "Meeting"},
		{Date: "2024-03-01", Title: "Rent"},
		{Date: "2024-03-15", Title: "Meeting"},
	}
	require.NoError(t, repo.SaveEvents(ctx, "a@x.com", want))

	got, err := repo.LoadEvents(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	other, err := repo.LoadEvents(ctx, "b@x.com")
	require.NoError(t, err)
	assert.Empty(t, other, "users must not see each other's events")
}

func TestEventRepository_SaveNil(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	repo := NewEventRepository(store)

	require.NoError(t, repo.SaveEvents(ctx, "a@x.com", nil))
	raw, _, _ := store.Get(ctx, "calendarEvents_a@x.com")
	assert.Equal(t, "[]", raw)
}

func TestEventRepository_CorruptValue(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "calendarEvents_a@x.com", "{{{"))
	repo := NewEventRepository(store)

	events, err := repo.LoadEvents(ctx, "a@x.com")
	assert.ErrorIs(t, err, models.ErrCorruptData)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestEventRepository_StoreUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(failingStore{err: errors.New("storage disabled")})

	events, err := repo.LoadEvents(ctx, "a@x.com")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.Empty(t, events)

	err = repo.SaveEvents(ctx, "a@x.com", []models.CalendarEvent{{Date: "2024-03-15", Title: "x"}})
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	repo := NewSessionRepository(store)

	_, ok, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, models.SessionIdentity{Email: "a@x.com"}))
	raw, _, _ := store.Get(ctx, "currentUser")
	assert.JSONEq(t, `{"email":"a@x.com"}`, raw)

	id, ok, err := repo.Current(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@x.com", id.Email)

	require.NoError(t, repo.Clear(ctx))
	_, ok, err = repo.Current(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionRepository_Errors(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(failingStore{err: errors.New("no session storage")})

	_, ok, err := repo.Current(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.ErrorIs(t, repo.Clear(ctx), models.ErrStoreUnavailable)
}
