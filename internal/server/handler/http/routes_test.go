package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/DayKeeper/internal/kv"
	"github.com/atinyakov/DayKeeper/internal/models"
	"github.com/atinyakov/DayKeeper/internal/repository"
	"github.com/atinyakov/DayKeeper/internal/service"
	"github.com/atinyakov/DayKeeper/internal/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()
	store := kv.NewMemoryStore()
	log := zap.NewNop()
	today := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return today }

	events := service.NewEventService(repository.NewEventRepository(store), time.UTC, log)
	sessions := session.NewManager(time.Hour)
	router := NewRouter(RouterConfig{
		Auth: &AuthHandler{
			AuthService: service.NewAuthService(repository.NewCredentialRepository(store), service.PlainVerifier{}, log),
			Sessions:    sessions,
		},
		Events:   &EventHandler{EventService: events, Now: clock, Log: log},
		Calendar: &CalendarHandler{EventService: events, Now: clock},
		Sessions: sessions,
		Logger:   log,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, sessions
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, url, body string) *http.Response {
	t.Helper()
	resp, err := c.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, c *http.Client, url string) *http.Response {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestRouter_FullFlow(t *testing.T) {
	srv, sessions := newTestServer(t)
	c := newClient(t)

	resp := get(t, c, srv.URL+"/api/events")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "events need a login")

	resp = postJSON(t, c, srv.URL+"/api/register", `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = get(t, c, srv.URL+"/api/session")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, c, srv.URL+"/api/events", `{"date":"2024-03-15","title":"Meeting"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = get(t, c, srv.URL+"/api/calendar?month=2024-03")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cal CalendarResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cal))
	found := false
	for _, w := range cal.Weeks {
		for _, d := range w {
			if d.Date == "2024-03-15" {
				found = true
				assert.True(t, d.IsToday)
				assert.Equal(t, []models.CalendarEvent{{Date: "2024-03-15", Title: "Meeting"}}, d.Events)
			}
		}
	}
	assert.True(t, found)

	resp = postJSON(t, c, srv.URL+"/api/logout", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, sessions.Len(), "logout ends the cookie session")
	resp = get(t, c, srv.URL+"/api/calendar")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// A second browser session logs in and sees the persisted event.
	other := newClient(t)
	resp = postJSON(t, other, srv.URL+"/api/login", `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = get(t, other, srv.URL+"/api/events")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []models.CalendarEvent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&events))
	assert.Equal(t, []models.CalendarEvent{{Date: "2024-03-15", Title: "Meeting"}}, events)
}

func TestRouter_Rejections(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(t)

	resp := postJSON(t, c, srv.URL+"/api/register", `{"email":"a@x.com","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "short password")

	resp = postJSON(t, c, srv.URL+"/api/register", `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = postJSON(t, newClient(t), srv.URL+"/api/register", `{"email":"a@x.com","password":"other12"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = postJSON(t, newClient(t), srv.URL+"/api/login", `{"email":"a@x.com","password":"wrong12"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err := c.Post(srv.URL+"/api/events", "text/plain", bytes.NewBufferString("hello"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestRouter_ConcurrentWrites(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newClient(t)
	resp := postJSON(t, c, srv.URL+"/api/register", `{"email":"a@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"date":"2024-03-15","title":"event %d"}`, i)
			resp, err := c.Post(srv.URL+"/api/events", "application/json", bytes.NewBufferString(body))
			if err != nil {
				t.Errorf("add event: %v", err)
				return
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("add event: status %d", resp.StatusCode)
			}
		}(i)
		other := newClient(t)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"email":"user%d@x.com","password":"secret1"}`, i)
			resp, err := other.Post(srv.URL+"/api/register", "application/json", bytes.NewBufferString(body))
			if err != nil {
				t.Errorf("register: %v", err)
				return
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("register: status %d", resp.StatusCode)
			}
		}(i)
	}
	wg.Wait()

	resp = get(t, c, srv.URL+"/api/events")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []models.CalendarEvent
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&events))
	assert.Len(t, events, n)

	for i := 0; i < n; i++ {
		resp := postJSON(t, newClient(t), srv.URL+"/api/login", fmt.Sprintf(`{"email":"user%d@x.com","password":"secret1"}`, i))
		assert.Equal(t, http.StatusOK, resp.StatusCode, "user%d", i)
	}
}
