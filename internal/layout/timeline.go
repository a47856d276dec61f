package layout

import (
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
)

const minutesPerDay = 24 * 60

// Placement is where a timed event sits on a day timeline.
// Percentages are of the day's height (vertical) and the day column's
// width (horizontal).
type Placement struct {
	Event *event.CalendarEvent

	// Start and End are the event's displayed interval, clipped to the day.
	Start time.Time
	End   time.Time

	TopPercent    float64
	HeightPercent float64

	Column       int
	TotalColumns int
	LeftPercent  float64
	WidthPercent float64
}

// Position computes the vertical placement of a timed event inside
// [dayStart, dayEnd). It always reports a single column; use PositionDay to
// resolve overlaps.
//
// The top is the start's wall-clock minutes of the day over 1440, the same
// scale the now indicator uses, so placements stay aligned on days with a
// DST transition. The height is the wall-clock span over 1440, never less
// than opts.MinHeightPercent. A missing end counts as opts.DefaultDuration.
// The top is never moved to keep the box inside the day; renderers clip.
func Position(e *event.CalendarEvent, dayStart, dayEnd time.Time, opts Options) Placement {
	start := e.StartTime
	end := start.Add(opts.defaultDuration())
	if e.EndTime != nil {
		end = *e.EndTime
	}
	if start.Before(dayStart) {
		start = dayStart
	}
	if end.After(dayEnd) {
		end = dayEnd
	}
	if end.Before(start) {
		end = start
	}

	loc := dayStart.Location()
	startMin := wallMinutes(start.In(loc))
	endMin := float64(minutesPerDay)
	if end.Before(dayEnd) {
		endMin = max(wallMinutes(end.In(loc)), startMin)
	}
	top := startMin / minutesPerDay * 100
	height := max((endMin-startMin)/minutesPerDay*100, opts.MinHeightPercent)

	return Placement{
		Event:         e,
		Start:         start,
		End:           end,
		TopPercent:    top,
		HeightPercent: height,
		Column:        0,
		TotalColumns:  1,
		LeftPercent:   0,
		WidthPercent:  100,
	}
}

// wallMinutes is t's clock reading as fractional minutes since midnight.
func wallMinutes(t time.Time) float64 {
	return float64(dateutil.MinutesOfDay(t)) + float64(t.Second())/60
}

// PositionDay places the timed events starting on day and splits
// overlapping ones into side-by-side columns. All-day events are skipped;
// they belong to the all-day lane.
//
// Events are sorted by start and each goes into the first column whose
// previous event has ended, opening a new column otherwise. Columns reset
// at the end of each overlap cluster, and every event of a cluster shares
// the cluster's column count, so events that overlap nothing keep the full
// width. Overlap is decided on the real [start, end) interval, not on the
// drawn box; a zero-length event counts as the instant at its start.
func PositionDay(events []*event.CalendarEvent, day time.Time, opts Options) []Placement {
	dayStart := dateutil.TruncateToDay(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var placements []Placement
	for _, e := range events {
		if e.IsAllDay {
			continue
		}
		if e.StartTime.Before(dayStart) || !e.StartTime.Before(dayEnd) {
			continue
		}
		placements = append(placements, Position(e, dayStart, dayEnd, opts))
	}
	if len(placements) == 0 {
		return nil
	}

	extentEnd := func(p Placement) time.Time {
		if !p.End.After(p.Start) {
			return p.Start.Add(time.Nanosecond)
		}
		return p.End
	}

	slices.SortStableFunc(placements, func(a, b Placement) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		// Longer events first so they take the leftmost column.
		if c := extentEnd(b).Compare(extentEnd(a)); c != 0 {
			return c
		}
		return strings.Compare(a.Event.ID, b.Event.ID)
	})

	var (
		columnEnds   []time.Time // end of the last event in each column
		clusterStart int
		clusterEnd   time.Time
	)
	closeCluster := func(upto int) {
		for i := clusterStart; i < upto; i++ {
			placements[i].TotalColumns = len(columnEnds)
		}
	}

	for i := range placements {
		p := &placements[i]
		end := extentEnd(*p)

		if i > 0 && !p.Start.Before(clusterEnd) {
			closeCluster(i)
			clusterStart = i
			columnEnds = columnEnds[:0]
		}

		col := -1
		for c, colEnd := range columnEnds {
			if !colEnd.After(p.Start) {
				col = c
				break
			}
		}
		if col < 0 {
			col = len(columnEnds)
			columnEnds = append(columnEnds, end)
		} else {
			columnEnds[col] = end
		}
		p.Column = col

		if i == clusterStart || end.After(clusterEnd) {
			clusterEnd = end
		}
	}
	closeCluster(len(placements))

	for i := range placements {
		p := &placements[i]
		p.WidthPercent = 100 / float64(p.TotalColumns)
		p.LeftPercent = float64(p.Column) * p.WidthPercent
	}
	return placements
}

// PositionWeek runs PositionDay for each day, returning one slice per day.
func PositionWeek(events []*event.CalendarEvent, days []time.Time, opts Options) [][]Placement {
	out := make([][]Placement, len(days))
	for i, d := range days {
		out[i] = PositionDay(events, d, opts)
	}
	return out
}

// NowIndicator is the current-time marker on a timeline.
type NowIndicator struct {
	// DayIndex is the column of today among the displayed days.
	DayIndex   int
	TopPercent float64
}

// Now returns the current-time marker when one of days is today.
// ok is false when today is not displayed, in which case no marker is drawn.
func Now(days []time.Time, now time.Time) (ind NowIndicator, ok bool) {
	for i, d := range days {
		if dateutil.SameDay(d, now) {
			local := now.In(d.Location())
			top := float64(dateutil.MinutesOfDay(local)) / minutesPerDay * 100
			return NowIndicator{DayIndex: i, TopPercent: top}, true
		}
	}
	return NowIndicator{}, false
}
