package grid

import (
	"strconv"
	"time"
)

// Weekdays holds the Monday-first column labels of the grid.
var Weekdays = [daysPerWeek]string{"Po", "Út", "St", "Čt", "Pá", "So", "Ne"}

var monthNames = [...]string{
	time.January:   "Leden",
	time.February:  "Únor",
	time.March:     "Březen",
	time.April:     "Duben",
	time.May:       "Květen",
	time.June:      "Červen",
	time.July:      "Červenec",
	time.August:    "Srpen",
	time.September: "Září",
	time.October:   "Říjen",
	time.November:  "Listopad",
	time.December:  "Prosinec",
}

// Title formats the month header, e.g. "Březen 2024".
func Title(t time.Time) string {
	return monthNames[t.Month()] + " " + strconv.Itoa(t.Year())
}
