package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/atinyakov/DayKeeper/internal/grid"
	"github.com/atinyakov/DayKeeper/internal/models"
)

const cellWidth = 4

// eventMark is appended to days that have at least one event.
const eventMark = "*"

// RenderOptions holds the styles of the month view.
type RenderOptions struct {
	TitleStyle  lipgloss.Style
	HeaderStyle lipgloss.Style
	DayStyle    lipgloss.Style
	OtherStyle  lipgloss.Style
	EventStyle  lipgloss.Style
	TodayStyle  lipgloss.Style
}

// DefaultRenderOptions returns the styles used by the shell.
func DefaultRenderOptions() RenderOptions {
	cell := lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Right)
	return RenderOptions{
		TitleStyle:  lipgloss.NewStyle().Bold(true).Width(cellWidth * len(grid.Weekdays)).Align(lipgloss.Center),
		HeaderStyle: cell.Foreground(lipgloss.Color("241")).Bold(true),
		DayStyle:    cell.Foreground(lipgloss.Color("15")),
		OtherStyle:  cell.Foreground(lipgloss.Color("244")).Faint(true),
		EventStyle:  cell.Foreground(lipgloss.Color("218")),
		TodayStyle:  lipgloss.NewStyle().Underline(true).Bold(true),
	}
}

// RenderMonth draws the grid as text: title, weekday header and one row per week.
func RenderMonth(m grid.Month, opts RenderOptions) string {
	rows := []string{opts.TitleStyle.Render(m.Title)}

	header := make([]string, 0, len(grid.Weekdays))
	for _, wd := range grid.Weekdays {
		header = append(header, opts.HeaderStyle.Render(wd))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for _, week := range m.Weeks {
		cells := make([]string, 0, len(week))
		for _, d := range week {
			cells = append(cells, renderDay(d, opts))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderDay(d models.CalendarDay, opts RenderOptions) string {
	label := strconv.Itoa(d.DayOfMonth)
	style := opts.DayStyle
	if len(d.Events) > 0 {
		label += eventMark
		style = opts.EventStyle
	}
	if !d.IsCurrentMonth {
		style = opts.OtherStyle
	}
	if d.IsToday {
		style = style.Inherit(opts.TodayStyle)
	}
	return style.Render(label)
}

// RenderEvents lists events one per line in insertion order.
func RenderEvents(events []models.CalendarEvent) string {
	if len(events) == 0 {
		return "No events."
	}
	var b strings.Builder
	for i, e := range events {
		fmt.Fprintf(&b, "%3d. %s  %s\n", i+1, e.Date, e.Title)
	}
	return strings.TrimRight(b.String(), "\n")
}
