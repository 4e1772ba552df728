package repository

import (
	"context"

	"github.com/atinyakov/DayKeeper/internal/kv"
	"github.com/atinyakov/DayKeeper/internal/models"
)

// EventRepository stores one event list per user under models.EventsKey.
type EventRepository struct {
	Store kv.Store
}

// NewEventRepository creates an EventRepository on store.
func NewEventRepository(store kv.Store) *EventRepository {
	return &EventRepository{Store: store}
}

// LoadEvents returns the events saved for email. The returned slice is never nil:
// an absent key yields an empty list, and so does an unreadable or corrupt value,
// in which case the error says which of the two happened.
func (r *EventRepository) LoadEvents(ctx context.Context, email string) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	if _, err := readJSON(ctx, r.Store, models.EventsKey(email), &events); err != nil {
		return []models.CalendarEvent{}, err
	}
	if events == nil {
		events = []models.CalendarEvent{}
	}
	return events, nil
}

// SaveEvents overwrites the list saved for email.
func (r *EventRepository) SaveEvents(ctx context.Context, email string, events []models.CalendarEvent) error {
	if events == nil {
		events = []models.CalendarEvent{}
	}
	return writeJSON(ctx, r.Store, models.EventsKey(email), events)
}
