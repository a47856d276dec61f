package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/recurrence"
)

// Scope selects how much of a recurring series an edit touches.
type Scope string

const (
	// ScopeOccurrence detaches the occurrence: the series gets an exception
	// for its date and a standalone event linked by SeriesID takes its place.
	ScopeOccurrence Scope = "occurrence"
	// ScopeFollowing ends the series before the occurrence and starts a new
	// series at it.
	ScopeFollowing Scope = "following"
	// ScopeSeries edits the series definition itself.
	ScopeSeries Scope = "series"
)

// ParseScope parses a scope name. Empty means ScopeOccurrence.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case "":
		return ScopeOccurrence, nil
	case ScopeOccurrence, ScopeFollowing, ScopeSeries:
		return sc, nil
	}
	return "", fmt.Errorf("unknown scope %q: want occurrence, following or series", s)
}

// Occurrence resolves an occurrence id into the materialized occurrence and
// its series. It returns ErrNotOccurrence for ids of plain events or series.
func (s *Session) Occurrence(ctx context.Context, id string) (occ, series *event.CalendarEvent, err error) {
	seriesID, date, ok := event.SplitOccurrenceID(id)
	if !ok {
		return nil, nil, ErrNotOccurrence
	}
	series, err = s.lookup(ctx, seriesID)
	if err != nil {
		return nil, nil, err
	}
	if !series.IsRecurring() {
		return nil, nil, ErrNotOccurrence
	}

	loc := series.StartTime.Location()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	occs, err := recurrence.Expand(series, dateutil.DateRange{Start: day, End: day})
	if err != nil {
		return nil, nil, err
	}
	for _, o := range occs {
		if o.ID == id {
			return o, series, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: %s", event.ErrEventNotFound, id)
}

// Create stores a new event and merges it into the snapshot.
func (s *Session) Create(ctx context.Context, d event.Draft) (*event.CalendarEvent, error) {
	created, err := s.store.CreateEvent(ctx, d)
	if err != nil {
		return nil, err
	}
	s.upsert(created)
	return created, nil
}

// Update applies a patch. For occurrence ids the scope decides whether the
// occurrence, the rest of the series or the whole series changes; for any
// other id the scope is ignored. It returns the event that now holds the
// edit: the detached occurrence, the new series or the updated event.
func (s *Session) Update(ctx context.Context, id string, p event.Patch, scope Scope) (*event.CalendarEvent, error) {
	occ, series, err := s.Occurrence(ctx, id)
	if errors.Is(err, ErrNotOccurrence) {
		return s.updateStored(ctx, id, p)
	}
	if err != nil {
		return nil, err
	}

	switch scope {
	case ScopeSeries:
		return s.updateStored(ctx, series.ID, shiftPatch(p, occ.StartTime, series.StartTime))
	case ScopeFollowing:
		return s.splitSeries(ctx, occ, series, &p)
	default:
		return s.detach(ctx, occ, series, p)
	}
}

// Delete removes an event. For occurrence ids the scope decides whether one
// occurrence, the rest of the series or the whole series goes away.
func (s *Session) Delete(ctx context.Context, id string, scope Scope) error {
	occ, series, err := s.Occurrence(ctx, id)
	if errors.Is(err, ErrNotOccurrence) {
		return s.deleteStored(ctx, id)
	}
	if err != nil {
		return err
	}

	switch scope {
	case ScopeSeries:
		return s.deleteStored(ctx, series.ID)
	case ScopeFollowing:
		_, err := s.splitSeries(ctx, occ, series, nil)
		return err
	default:
		_, err := s.addException(ctx, series, occ.OccurrenceDate)
		return err
	}
}

// Cancel marks an event cancelled with the given scope. Cancelled events
// stay in the calendar, grayed out, unless filtered.
func (s *Session) Cancel(ctx context.Context, id string, scope Scope) (*event.CalendarEvent, error) {
	cancelled := true
	return s.Update(ctx, id, event.Patch{IsCancelled: &cancelled}, scope)
}

func (s *Session) updateStored(ctx context.Context, id string, p event.Patch) (*event.CalendarEvent, error) {
	updated, err := s.store.UpdateEvent(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.upsert(updated)
	return updated, nil
}

func (s *Session) deleteStored(ctx context.Context, id string) error {
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.remove(id)
	return nil
}

// detach excludes the occurrence from its series and stores the edited
// occurrence as a standalone event.
func (s *Session) detach(ctx context.Context, occ, series *event.CalendarEvent, p event.Patch) (*event.CalendarEvent, error) {
	edited, err := occ.Apply(p, s.now())
	if err != nil {
		return nil, err
	}
	if _, err := s.addException(ctx, series, occ.OccurrenceDate); err != nil {
		return nil, err
	}
	d := edited.ToDraft()
	d.SeriesID = series.ID
	d.Recurring = false
	d.Recurrence = nil
	created, err := s.Create(ctx, d)
	if err != nil {
		return nil, fmt.Errorf("detaching occurrence %s: %w", occ.ID, err)
	}
	s.logger.Debug("detached occurrence", zap.String("occurrence", occ.ID), zap.String("event", created.ID))
	return created, nil
}

func (s *Session) addException(ctx context.Context, series *event.CalendarEvent, date time.Time) (*event.CalendarEvent, error) {
	rule := series.Recurrence.Clone()
	if !rule.IsExcluded(date) {
		rule.Exceptions = append(rule.Exceptions, dateutil.TruncateToDay(date))
	}
	return s.updateStored(ctx, series.ID, event.Patch{Recurrence: rule})
}

// splitSeries ends series the day before occ. When p is non-nil a new
// series starting at occ carries the remaining occurrences with p applied;
// when p is nil the remaining occurrences are simply dropped.
func (s *Session) splitSeries(ctx context.Context, occ, series *event.CalendarEvent, p *event.Patch) (*event.CalendarEvent, error) {
	before := dateutil.DateRange{
		Start: dateutil.TruncateToDay(series.StartTime),
		End:   occ.OccurrenceDate.AddDate(0, 0, -1),
	}
	// Count rule occurrences before occ; a rule's COUNT includes excluded dates.
	var done int
	if !before.End.Before(before.Start) {
		bare := series.Clone()
		bare.Recurrence.Exceptions = nil
		starts, err := recurrence.Starts(bare, before)
		if err != nil {
			return nil, err
		}
		done = len(starts)
	}

	// The occurrence is the first one: the whole series is affected.
	if done == 0 {
		if p == nil {
			return nil, s.deleteStored(ctx, series.ID)
		}
		return s.updateStored(ctx, series.ID, shiftPatch(*p, occ.StartTime, series.StartTime))
	}

	head := series.Recurrence.Clone()
	tail := series.Recurrence.Clone()
	until := before.End
	head.Until = &until
	head.Count = 0
	head.Exceptions = slices.DeleteFunc(head.Exceptions, func(t time.Time) bool { return !t.Before(occ.OccurrenceDate) })
	tail.Exceptions = slices.DeleteFunc(tail.Exceptions, func(t time.Time) bool { return t.Before(occ.OccurrenceDate) })
	if series.Recurrence.Count > 0 {
		tail.Count = max(series.Recurrence.Count-done, 0)
	}

	if _, err := s.updateStored(ctx, series.ID, event.Patch{Recurrence: head}); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	next := occ.Clone()
	next.Recurrence = tail
	next, err := next.Apply(*p, s.now())
	if err != nil {
		return nil, err
	}
	d := next.ToDraft()
	d.SeriesID = ""
	return s.Create(ctx, d)
}

// shiftPatch rebases time changes made on an occurrence onto the series start.
func shiftPatch(p event.Patch, occStart, seriesStart time.Time) event.Patch {
	delta := seriesStart.Sub(occStart)
	if p.StartTime != nil {
		start := p.StartTime.Add(delta)
		p.StartTime = &start
	}
	if p.EndTime != nil {
		end := p.EndTime.Add(delta)
		p.EndTime = &end
	}
	return p
}

func (s *Session) lookup(ctx context.Context, id string) (*event.CalendarEvent, error) {
	for _, e := range s.snapshot {
		if e.ID == id {
			return e, nil
		}
	}
	return s.store.GetEvent(ctx, id)
}

// upsert replaces or appends e in the snapshot without touching the slice
// handed out earlier.
func (s *Session) upsert(e *event.CalendarEvent) {
	next := slices.Clone(s.snapshot)
	for i, old := range next {
		if old.ID == e.ID {
			next[i] = e
			s.snapshot = next
			return
		}
	}
	s.snapshot = append(next, e)
}

func (s *Session) remove(id string) {
	s.snapshot = slices.DeleteFunc(slices.Clone(s.snapshot), func(e *event.CalendarEvent) bool {
		return e.ID == id
	})
}
