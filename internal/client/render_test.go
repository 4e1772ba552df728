package client

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/DayKeeper/internal/grid"
	"github.com/atinyakov/DayKeeper/internal/models"
)

func TestRenderMonth(t *testing.T) {
	ref := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	m := grid.Build(ref, ref, []models.CalendarEvent{{Date: "2024-03-15", Title: "Meeting"}})
	out := RenderMonth(m, DefaultRenderOptions())

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2+len(m.Weeks), "title, header and one line per week")
	assert.Contains(t, lines[0], "Březen 2024")
	for _, wd := range grid.Weekdays {
		assert.Contains(t, lines[1], wd)
	}
	assert.Contains(t, lines[2], "26", "leading days of february")
	assert.Contains(t, out, "15"+eventMark)
	assert.NotContains(t, out, "14"+eventMark)
}

func TestRenderEvents(t *testing.T) {
	assert.Equal(t, "No events.", RenderEvents(nil))

	out := RenderEvents([]models.CalendarEvent{
		{Date: "2024-03-15", Title: "B"},
		{Date: "2024-03-01", Title: "A"},
	})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "2024-03-15  B")
	assert.Contains(t, lines[1], "2024-03-01  A")
}
