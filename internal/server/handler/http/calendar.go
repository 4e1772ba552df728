package http

import (
	"net/http"
	"time"

	"github.com/atinyakov/DayKeeper/internal/grid"
	"github.com/atinyakov/DayKeeper/internal/models"
)

// MonthLayout is the format of the month query parameter.
const MonthLayout = "2006-01"

// CalendarHandler serves the month grid of the logged-in user.
type CalendarHandler struct {
	EventService EventService
	// Now returns the current time; time.Now if nil. Its location is the calendar's location.
	Now func() time.Time
}

// DayResponse is one grid cell with its date serialized.
type DayResponse struct {
	Date string `json:"date"`
	models.CalendarDay
}

// CalendarResponse is the month grid with the neighbouring months for paging.
type CalendarResponse struct {
	Month    string          `json:"month"`
	Title    string          `json:"title"`
	Weekdays []string        `json:"weekdays"`
	Weeks    [][]DayResponse `json:"weeks"`
	Prev     string          `json:"prev"`
	Next     string          `json:"next"`
}

// Month handles GET /api/calendar?month=YYYY-MM. Without a month it shows the current one.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	today := now(h.Now)
	ref := today
	if q := r.URL.Query().Get("month"); q != "" {
		m, err := time.ParseInLocation(MonthLayout, q, today.Location())
		if err != nil {
			http.Error(w, "month must be YYYY-MM", http.StatusBadRequest)
			return
		}
		ref = m
	}

	events, ok := loadEvents(w, r, h.EventService, id)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, newCalendarResponse(grid.Build(ref, today, events), ref))
}

func newCalendarResponse(m grid.Month, ref time.Time) CalendarResponse {
	weeks := make([][]DayResponse, 0, len(m.Weeks))
	for _, week := range m.Weeks {
		days := make([]DayResponse, 0, len(week))
		for _, d := range week {
			days = append(days, DayResponse{Date: models.FormatDate(d.Date), CalendarDay: d})
		}
		weeks = append(weeks, days)
	}

	return CalendarResponse{
		Month:    ref.Format(MonthLayout),
		Title:    m.Title,
		Weekdays: grid.Weekdays[:],
		Weeks:    weeks,
		Prev:     grid.Shift(ref, -1).Format(MonthLayout),
		Next:     grid.Shift(ref, 1).Format(MonthLayout),
	}
}
