package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/DayKeeper/internal/models"
)

// EventRepository defines the persistence operations needed by the EventService.
type EventRepository interface {
	// LoadEvents returns the saved list, never nil, with an error if it had to be reset.
	LoadEvents(ctx context.Context, email string) ([]models.CalendarEvent, error)
	// SaveEvents overwrites the saved list.
	SaveEvents(ctx context.Context, email string, events []models.CalendarEvent) error
}

// EventService manages the per-user event lists. Writes to one user's list are
// serialized so concurrent appends do not overwrite each other.
type EventService struct {
	repo EventRepository
	log  *zap.Logger
	loc  *time.Location

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEventService constructs an EventService. Dates are validated in loc, or time.Local if nil.
func NewEventService(repo EventRepository, loc *time.Location, log *zap.Logger) *EventService {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EventService{repo: repo, log: log, loc: loc, locks: make(map[string]*sync.Mutex)}
}

// lock takes the write lock of email's list and returns its release func.
func (s *EventService) lock(email string) func() {
	s.mu.Lock()
	l, ok := s.locks[email]
	if !ok {
		l = &sync.Mutex{}
		s.locks[email] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// LoadEvents returns the events of id. On unreadable or corrupt data the list is
// empty and the error reports models.ErrStoreUnavailable or models.ErrCorruptData;
// callers may show a warning or ignore it.
func (s *EventService) LoadEvents(ctx context.Context, id models.SessionIdentity) ([]models.CalendarEvent, error) {
	if id.Email == "" {
		return []models.CalendarEvent{}, models.ErrUnauthenticated
	}
	events, err := s.repo.LoadEvents(ctx, id.Email)
	if err != nil {
		s.log.Warn("failed to load events, starting empty", zap.String("email", id.Email), zap.Error(err))
	}
	return events, err
}

// SaveEvents persists the whole list of id.
func (s *EventService) SaveEvents(ctx context.Context, id models.SessionIdentity, events []models.CalendarEvent) error {
	if id.Email == "" {
		return models.ErrUnauthenticated
	}
	defer s.lock(id.Email)()
	return s.save(ctx, id, events)
}

func (s *EventService) save(ctx context.Context, id models.SessionIdentity, events []models.CalendarEvent) error {
	if err := s.repo.SaveEvents(ctx, id.Email, events); err != nil {
		s.log.Error("failed to save events", zap.String("email", id.Email), zap.Int("count", len(events)), zap.Error(err))
		return err
	}
	return nil
}

// AddEvent appends {date, title} to events and saves the result. The title is
// trimmed and must not be empty; date must be YYYY-MM-DD. The returned list
// contains the new event even when saving fails, in which case the save error is
// returned alongside it. events itself is never modified.
func (s *EventService) AddEvent(ctx context.Context, id models.SessionIdentity, events []models.CalendarEvent, date, title string) ([]models.CalendarEvent, error) {
	if id.Email == "" {
		return events, models.ErrUnauthenticated
	}
	event, err := s.newEvent(date, title)
	if err != nil {
		return events, err
	}

	defer s.lock(id.Email)()
	updated := appendEvent(events, event)
	return updated, s.save(ctx, id, updated)
}

// AppendEvent adds {date, title} to the saved list of id. The load, append and
// save run under the list's write lock, so concurrent callers never lose each
// other's events. A corrupt saved list is replaced by a list holding only the new event.
func (s *EventService) AppendEvent(ctx context.Context, id models.SessionIdentity, date, title string) ([]models.CalendarEvent, error) {
	if id.Email == "" {
		return nil, models.ErrUnauthenticated
	}
	event, err := s.newEvent(date, title)
	if err != nil {
		return nil, err
	}

	defer s.lock(id.Email)()
	events, err := s.repo.LoadEvents(ctx, id.Email)
	if err != nil {
		if !errors.Is(err, models.ErrCorruptData) {
			s.log.Error("failed to load events", zap.String("email", id.Email), zap.Error(err))
			return nil, err
		}
		s.log.Warn("replacing corrupt event list", zap.String("email", id.Email), zap.Error(err))
	}

	updated := appendEvent(events, event)
	if err := s.save(ctx, id, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *EventService) newEvent(date, title string) (models.CalendarEvent, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.CalendarEvent{}, fmt.Errorf("%w: event title is empty", models.ErrValidation)
	}
	day, err := models.ParseDate(date, s.loc)
	if err != nil {
		return models.CalendarEvent{}, err
	}
	return models.CalendarEvent{Date: models.FormatDate(day), Title: title}, nil
}

func appendEvent(events []models.CalendarEvent, e models.CalendarEvent) []models.CalendarEvent {
	updated := make([]models.CalendarEvent, 0, len(events)+1)
	updated = append(updated, events...)
	return append(updated, e)
}
