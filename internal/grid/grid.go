// Package grid builds the month view of the calendar: a Monday-first grid of
// whole weeks with the days of adjacent months filling the first and last rows.
package grid

import (
	"time"

	"github.com/atinyakov/DayKeeper/internal/models"
)

const (
	daysPerWeek = 7
	// shortGrid is used whenever five weeks cover the whole month.
	shortGrid = 5 * daysPerWeek
	longGrid  = 6 * daysPerWeek
)

// Month is a rendered month: the month it shows plus its weeks, each exactly seven days long.
type Month struct {
	Year  int
	Month time.Month
	Title string
	Weeks [][]models.CalendarDay
}

// Cells returns the grid flattened back into a single ordered slice.
func (m Month) Cells() []models.CalendarDay {
	out := make([]models.CalendarDay, 0, len(m.Weeks)*daysPerWeek)
	for _, w := range m.Weeks {
		out = append(out, w...)
	}
	return out
}

// Build returns the grid of the month containing ref. Dates are taken in ref's
// location; today is normalized to midnight of that location before it is
// compared with each day of the month. Each cell receives the events whose date
// matches it, in the order they appear in events. Build never mutates events.
func Build(ref, today time.Time, events []models.CalendarEvent) Month {
	loc := ref.Location()
	todayMidnight := models.Midnight(today.In(loc))

	year, month, _ := ref.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysInMonth := DaysIn(year, month, loc)

	// Monday is 0, Sunday is 6
	startDayOfWeek := (int(first.Weekday()) + 6) % daysPerWeek

	byDate := indexEvents(events)
	cells := make([]models.CalendarDay, 0, longGrid)

	for i := startDayOfWeek; i > 0; i-- {
		cells = append(cells, newDay(first.AddDate(0, 0, -i), false, false, byDate))
	}

	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, loc)
		cells = append(cells, newDay(date, true, date.Equal(todayMidnight), byDate))
	}

	total := shortGrid
	if len(cells) > shortGrid {
		total = longGrid
	}
	next := time.Date(year, month+1, 1, 0, 0, 0, 0, loc)
	for i := 0; len(cells) < total; i++ {
		cells = append(cells, newDay(next.AddDate(0, 0, i), false, false, byDate))
	}

	weeks := make([][]models.CalendarDay, 0, total/daysPerWeek)
	for i := 0; i < len(cells); i += daysPerWeek {
		weeks = append(weeks, cells[i:i+daysPerWeek:i+daysPerWeek])
	}

	return Month{
		Year:  year,
		Month: month,
		Title: Title(first),
		Weeks: weeks,
	}
}

// DaysIn reports the number of days in the given month.
func DaysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// Shift moves ref by the given number of months, keeping the time of day.
// The day of month is clamped to the length of the target month, so paging
// forward from January 31st lands on the last day of February.
func Shift(ref time.Time, months int) time.Time {
	year, month, day := ref.Date()
	loc := ref.Location()

	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, loc)
	if last := DaysIn(target.Year(), target.Month(), loc); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day,
		ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), loc)
}

func newDay(date time.Time, current, today bool, byDate map[string][]models.CalendarEvent) models.CalendarDay {
	events := byDate[models.FormatDate(date)]
	if events == nil {
		events = []models.CalendarEvent{}
	}
	return models.CalendarDay{
		Date:           date,
		DayOfMonth:     date.Day(),
		IsCurrentMonth: current,
		IsToday:        today,
		Events:         events,
	}
}

func indexEvents(events []models.CalendarEvent) map[string][]models.CalendarEvent {
	byDate := make(map[string][]models.CalendarEvent, len(events))
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}
	return byDate
}
