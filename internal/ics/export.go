// Package ics renders a user's event list as an iCalendar document so it can be
// imported into other calendar applications.
package ics

import (
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/atinyakov/DayKeeper/internal/models"
)

// ProductID identifies the exporter in the PRODID property.
const ProductID = "-//DayKeeper//Calendar//CS"

// Export returns an iCalendar document with one all-day VEVENT per event.
// UIDs are derived from the owner, position and content of each event, so
// exporting the same list twice yields the same UIDs. Events whose stored date
// is not YYYY-MM-DD are left out and returned as skipped.
func Export(id models.SessionIdentity, events []models.CalendarEvent, stamp time.Time) (doc string, skipped []models.CalendarEvent) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for i, e := range events {
		day, err := models.ParseDate(e.Date, time.UTC)
		if err != nil {
			skipped = append(skipped, e)
			continue
		}

		ve := cal.AddEvent(eventUID(id, i, e))
		ve.SetDtStampTime(stamp.UTC())
		ve.SetAllDayStartAt(day)
		ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ve.SetSummary(e.Title)
	}

	return cal.Serialize(), skipped
}

func eventUID(id models.SessionIdentity, index int, e models.CalendarEvent) string {
	name := id.Email + "\x00" + strconv.Itoa(index) + "\x00" + e.Date + "\x00" + e.Title
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String() + "@daykeeper"
}
