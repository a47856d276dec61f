package layout

import (
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
)

// GridCells is the fixed size of a month grid: six weeks of seven days.
const GridCells = 42

// Cell is one day of the month grid.
type Cell struct {
	Date           time.Time
	IsCurrentMonth bool
	IsToday        bool
	// Events holds every event on the day, all-day events first.
	Events []*event.CalendarEvent
}

// Visible splits the cell's events into the first limit and the count of
// the rest, for "+N more" rendering. A limit <= 0 shows everything.
func (c Cell) Visible(limit int) (shown []*event.CalendarEvent, more int) {
	if limit <= 0 || len(c.Events) <= limit {
		return c.Events, 0
	}
	return c.Events[:limit], len(c.Events) - limit
}

// MonthGrid is the 42-cell projection of one month.
type MonthGrid struct {
	Year  int
	Month time.Month
	Cells []Cell
}

// Weeks returns the grid as six rows of seven cells.
func (g MonthGrid) Weeks() [][]Cell {
	rows := make([][]Cell, 0, GridCells/7)
	for i := 0; i < len(g.Cells); i += 7 {
		rows = append(rows, g.Cells[i:i+7])
	}
	return rows
}

// Range returns the first and last date shown by the grid.
func (g MonthGrid) Range() dateutil.DateRange {
	return dateutil.DateRange{Start: g.Cells[0].Date, End: g.Cells[len(g.Cells)-1].Date}
}

// BuildMonthGrid lays out a month as 42 cells: the leading days of the
// previous month back to the week start, every day of the month, then
// trailing days of the next month. Dates are in now's location.
//
// Timed events land in the cell of their start date. All-day events land in
// every cell they cover.
func BuildMonthGrid(year int, month time.Month, events []*event.CalendarEvent, now time.Time, opts Options) MonthGrid {
	loc := now.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	start, _ := dateutil.WeekRange(first, opts.WeekStart)

	days := make([]time.Time, GridCells)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	buckets := bucket(events, days, nil)

	// Normalize year/month for callers passing e.g. month 13.
	year, month = first.Year(), first.Month()
	cells := make([]Cell, GridCells)
	for i, d := range days {
		cells[i] = Cell{
			Date:           d,
			IsCurrentMonth: d.Month() == month && d.Year() == year,
			IsToday:        dateutil.SameDay(d, now),
			Events:         sortedStable(buckets[i], byDayOrder),
		}
	}
	return MonthGrid{Year: year, Month: month, Cells: cells}
}
