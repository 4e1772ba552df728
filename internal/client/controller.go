// Package client implements the interactive terminal calendar: application
// state, month rendering and the command shell.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/DayKeeper/internal/grid"
	"github.com/atinyakov/DayKeeper/internal/ics"
	"github.com/atinyakov/DayKeeper/internal/models"
	"github.com/atinyakov/DayKeeper/internal/service"
)

// AuthService is the part of service.AuthService the controller needs.
type AuthService interface {
	Register(ctx context.Context, sess service.SessionStore, email, password string) (models.SessionIdentity, error)
	Login(ctx context.Context, sess service.SessionStore, email, password string) (models.SessionIdentity, error)
	Logout(ctx context.Context, sess service.SessionStore) error
}

// EventService is the part of service.EventService the controller needs.
type EventService interface {
	LoadEvents(ctx context.Context, id models.SessionIdentity) ([]models.CalendarEvent, error)
	AddEvent(ctx context.Context, id models.SessionIdentity, events []models.CalendarEvent, date, title string) ([]models.CalendarEvent, error)
}

// ErrEventsNotLoaded marks a login that succeeded but whose event list could
// not be read; the controller continues with an empty list.
var ErrEventsNotLoaded = errors.New("events not loaded")

// SessionState is the session-scoped identity store.
type SessionState interface {
	service.SessionStore
	Current(ctx context.Context) (models.SessionIdentity, bool, error)
}

// Controller owns the application state: the month on screen, the logged-in
// identity and that user's events. Events are loaded on login and saved on every change.
type Controller struct {
	auth    AuthService
	events  EventService
	session SessionState
	now     func() time.Time
	log     *zap.Logger

	current  time.Time
	identity *models.SessionIdentity
	list     []models.CalendarEvent
}

// NewController creates a Controller showing the month of now().
func NewController(auth AuthService, events EventService, session SessionState, now func() time.Time, log *zap.Logger) *Controller {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		auth:    auth,
		events:  events,
		session: session,
		now:     now,
		log:     log,
		current: now(),
		list:    []models.CalendarEvent{},
	}
}

// Start restores a logged-in identity left in the session store and loads its
// events. A load failure is returned but leaves the controller usable with an empty list.
func (c *Controller) Start(ctx context.Context) error {
	id, ok, err := c.session.Current(ctx)
	if err != nil {
		c.log.Warn("failed to read session", zap.Error(err))
		return err
	}
	if !ok {
		return nil
	}
	return c.enter(ctx, id)
}

// Register creates an account and logs it in.
func (c *Controller) Register(ctx context.Context, email, password string) error {
	id, err := c.auth.Register(ctx, c.session, email, password)
	if err != nil {
		return err
	}
	return c.enter(ctx, id)
}

// Login logs in an existing account.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	id, err := c.auth.Login(ctx, c.session, email, password)
	if err != nil {
		return err
	}
	return c.enter(ctx, id)
}

// Logout forgets the identity and its events. The in-memory state is cleared
// even when the session store cannot be updated.
func (c *Controller) Logout(ctx context.Context) error {
	c.identity = nil
	c.list = []models.CalendarEvent{}
	return c.auth.Logout(ctx, c.session)
}

func (c *Controller) enter(ctx context.Context, id models.SessionIdentity) error {
	c.identity = &id
	events, err := c.events.LoadEvents(ctx, id)
	if events == nil {
		events = []models.CalendarEvent{}
	}
	c.list = events
	if err != nil {
		return errors.Join(ErrEventsNotLoaded, err)
	}
	return nil
}

// Identity returns the logged-in user.
func (c *Controller) Identity() (models.SessionIdentity, bool) {
	if c.identity == nil {
		return models.SessionIdentity{}, false
	}
	return *c.identity, true
}

// Events returns a copy of the loaded events.
func (c *Controller) Events() []models.CalendarEvent {
	return append([]models.CalendarEvent{}, c.list...)
}

// Current returns the reference date of the month on screen.
func (c *Controller) Current() time.Time { return c.current }

// Prev moves the view one month back.
func (c *Controller) Prev() { c.current = grid.Shift(c.current, -1) }

// Next moves the view one month forward.
func (c *Controller) Next() { c.current = grid.Shift(c.current, 1) }

// Today moves the view to the current month.
func (c *Controller) Today() { c.current = c.now() }

// Goto shows the month given as YYYY-MM.
func (c *Controller) Goto(month string) error {
	t, err := time.ParseInLocation("2006-01", month, c.current.Location())
	if err != nil {
		return fmt.Errorf("%w: month %q is not YYYY-MM", models.ErrValidation, month)
	}
	c.current = t
	return nil
}

// Month builds the grid of the month on screen.
func (c *Controller) Month() grid.Month {
	return grid.Build(c.current, c.now(), c.list)
}

// AddEvent appends an event for the logged-in user and saves the list. When
// saving fails the event stays in the in-memory list and the error is returned.
func (c *Controller) AddEvent(ctx context.Context, date, title string) error {
	id, ok := c.Identity()
	if !ok {
		return models.ErrUnauthenticated
	}
	updated, err := c.events.AddEvent(ctx, id, c.list, date, title)
	if err != nil && !errors.Is(err, models.ErrStoreUnavailable) {
		return err
	}
	c.list = updated
	return err
}

// ExportICS renders the loaded events as an iCalendar document. Events with a
// malformed stored date are left out and logged.
func (c *Controller) ExportICS() (string, error) {
	id, ok := c.Identity()
	if !ok {
		return "", models.ErrUnauthenticated
	}
	doc, skipped := ics.Export(id, c.list, c.now())
	for _, e := range skipped {
		c.log.Warn("event left out of export", zap.String("date", e.Date), zap.String("title", e.Title))
	}
	return doc, nil
}
