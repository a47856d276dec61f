package ui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/coursecal/internal/config"
	"github.com/javiermolinar/coursecal/internal/db"
	"github.com/javiermolinar/coursecal/internal/event"
)

// Monday morning.
var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *db.SQLite {
	t.Helper()
	store, err := db.New(":memory:", db.WithLocation(time.UTC), db.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Calendar.Timezone = "UTC"
	cfg.Storage.DBPath = filepath.Join(t.TempDir(), "coursecal.db")
	return cfg
}

// run executes one command line against store with a fresh App, the way
// separate invocations of the binary would.
func run(t *testing.T, store Store, args ...string) (string, error) {
	t.Helper()
	DisableColor()

	app := NewApp(store, testConfig(t), WithClock(func() time.Time { return testNow }))
	var out bytes.Buffer
	root := app.Root()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := app.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, store Store, args ...string) string {
	t.Helper()
	out, err := run(t, store, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func onlyEvent(t *testing.T, store *db.SQLite) *event.CalendarEvent {
	t.Helper()
	events, err := store.AllEvents(context.Background())
	if err != nil {
		t.Fatalf("AllEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	return events[0]
}

func TestAddAndList(t *testing.T) {
	store := newTestStore(t)

	out := mustRun(t, store, "add", "Linear algebra",
		"--date=2025-03-10", "--start=09:00", "--end=10:30", "--type=lecture", "--location=Room 101")
	if !strings.Contains(out, "Created event") {
		t.Errorf("add output = %q", out)
	}

	e := onlyEvent(t, store)
	if e.Type != event.TypeLecture || e.Location != "Room 101" || e.ReminderMinutes != event.DefaultReminderMinutes {
		t.Errorf("stored event = %+v", e)
	}

	out = mustRun(t, store, "list", "--start=2025-03-10")
	for _, want := range []string{"Linear algebra", "09:00-10:30", "@ Room 101", e.ID} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, store, "list", "--start=2025-03-11")
	if !strings.Contains(out, "No events found") {
		t.Errorf("list of empty day = %q", out)
	}
}

func TestAdd_Errors(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		name    string
		args    []string
		wantErr error
		wantMsg string
	}{
		{
			name:    "missing start",
			args:    []string{"add", "Essay", "--date=2025-03-10"},
			wantMsg: "--start is required",
		},
		{
			name:    "end before start",
			args:    []string{"add", "Essay", "--start=10:00", "--end=09:00"},
			wantErr: event.ErrEndBeforeStart,
		},
		{
			name:    "bad clock",
			args:    []string{"add", "Essay", "--start=9am"},
			wantErr: event.ErrInvalidClock,
		},
		{
			name:    "unknown type",
			args:    []string{"add", "Essay", "--start=09:00", "--type=party"},
			wantErr: event.ErrUnknownType,
		},
		{
			name:    "too many tags",
			args:    []string{"add", "Essay", "--start=09:00", "--tag=a,b,c,d,e,f"},
			wantErr: event.ErrTooManyTags,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, store, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("got %v, want message containing %q", err, tt.wantMsg)
			}
		})
	}

	events, _ := store.AllEvents(context.Background())
	if len(events) != 0 {
		t.Errorf("failed adds stored %d events", len(events))
	}
}

func TestAdd_AllDayAndCourse(t *testing.T) {
	store := newTestStore(t)

	mustRun(t, store, "--course=CS101", "add", "Finals week",
		"--all-day", "--date=2025-05-12", "--end-date=2025-05-16", "--type=exam", "--priority=urgent")

	e := onlyEvent(t, store)
	if !e.IsAllDay || e.CourseID != "CS101" || e.Visibility != event.VisibilityCourse {
		t.Errorf("event = %+v", e)
	}
	if got := len(e.Days()); got != 5 {
		t.Errorf("days = %d, want 5", got)
	}
}

func TestEdit(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Seminar", "--date=2025-03-10", "--start=14:00", "--end=15:00")
	id := onlyEvent(t, store).ID

	out := mustRun(t, store, "edit", id, "--date=2025-03-12", "--title=Research seminar")
	if !strings.Contains(out, "Updated event") {
		t.Errorf("edit output = %q", out)
	}

	e := onlyEvent(t, store)
	if e.Title != "Research seminar" {
		t.Errorf("title = %q", e.Title)
	}
	wantStart := time.Date(2025, 3, 12, 14, 0, 0, 0, time.UTC)
	if !e.StartTime.Equal(wantStart) || e.EndTime == nil || !e.EndTime.Equal(wantStart.Add(time.Hour)) {
		t.Errorf("times = %v - %v, want the same hour on Mar 12", e.StartTime, e.EndTime)
	}

	if _, err := run(t, store, "edit", id); err == nil {
		t.Error("edit without flags should fail")
	}
	if _, err := run(t, store, "edit", "missing", "--title=x"); !errors.Is(err, event.ErrEventNotFound) {
		t.Errorf("edit of unknown id: got %v", err)
	}
}

func TestEdit_OccurrenceScope(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Lab", "--date=2025-03-10", "--start=09:00", "--end=11:00",
		"--repeat=FREQ=WEEKLY;COUNT=4")
	series := onlyEvent(t, store)

	mustRun(t, store, "edit", event.OccurrenceID(series.ID, time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)), "--location=Hall B")

	events, err := store.AllEvents(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want series and detached occurrence", len(events))
	}
	var detached *event.CalendarEvent
	for _, e := range events {
		if e.ID != series.ID {
			detached = e
		}
	}
	if detached.SeriesID != series.ID || detached.Location != "Hall B" || detached.IsRecurring() {
		t.Errorf("detached = %+v", detached)
	}

	out := mustRun(t, store, "week", "--date=2025-03-17", "--ids")
	if strings.Count(out, "Lab") != 1 || !strings.Contains(out, "Hall B") {
		t.Errorf("week view should show only the detached occurrence:\n%s", out)
	}
}

func TestCancel(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Office hours", "--date=2025-03-10", "--start=13:00", "--type=office_hours")
	id := onlyEvent(t, store).ID

	mustRun(t, store, "cancel", id)
	if !onlyEvent(t, store).IsCancelled {
		t.Fatal("event not cancelled")
	}

	out := mustRun(t, store, "day", "--date=2025-03-10")
	if strings.Contains(out, "Office hours") {
		t.Errorf("cancelled event shown by default:\n%s", out)
	}
	out = mustRun(t, store, "day", "--date=2025-03-10", "--show-cancelled")
	if !strings.Contains(out, "Office hours (cancelled)") {
		t.Errorf("cancelled event not shown with --show-cancelled:\n%s", out)
	}

	mustRun(t, store, "edit", id, "--restore")
	if onlyEvent(t, store).IsCancelled {
		t.Error("event not restored")
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Quiz 1", "--date=2025-03-11", "--start=10:00", "--type=quiz")
	id := onlyEvent(t, store).ID

	// No confirmation on stdin aborts.
	out := mustRun(t, store, "delete", id)
	if !strings.Contains(out, "Aborted") {
		t.Errorf("delete output = %q", out)
	}
	onlyEvent(t, store)

	mustRun(t, store, "delete", id, "--yes")
	events, _ := store.AllEvents(context.Background())
	if len(events) != 0 {
		t.Errorf("got %d events after delete", len(events))
	}
}

func TestPostpone(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Essay due", "--date=2025-03-10", "--start=17:00", "--end=17:30", "--type=deadline")
	id := onlyEvent(t, store).ID

	out := mustRun(t, store, "postpone", id, "--date=2025-03-14")
	if !strings.Contains(out, "Mon Mar 10 → Fri Mar 14") {
		t.Errorf("postpone output = %q", out)
	}
	e := onlyEvent(t, store)
	want := time.Date(2025, 3, 14, 17, 0, 0, 0, time.UTC)
	if !e.StartTime.Equal(want) || !e.EndTime.Equal(want.Add(30*time.Minute)) {
		t.Errorf("moved to %v - %v", e.StartTime, e.EndTime)
	}

	mustRun(t, store, "postpone", id, "--days=-1")
	if got := onlyEvent(t, store).StartTime; !got.Equal(want.AddDate(0, 0, -1)) {
		t.Errorf("shifted to %v", got)
	}
}

func TestViews(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Linear algebra", "--date=2025-03-10", "--start=09:00", "--end=10:30", "--type=lecture")
	mustRun(t, store, "add", "Midterm", "--date=2025-03-12", "--start=10:00", "--type=exam", "--priority=urgent")
	mustRun(t, store, "add", "Spring break", "--all-day", "--date=2025-03-17", "--end-date=2025-03-21", "--type=holiday")

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "month",
			args: []string{"month", "--date=2025-03-01"},
			want: []string{"March 2025", "Linear", "Midterm", "Spring"},
		},
		{
			name:    "week",
			args:    []string{"week"},
			want:    []string{"March 9-15, 2025", "09:00-10:30", "Midterm !!", "now 08:00"},
			notWant: []string{"Spring break"},
		},
		{
			name:    "day",
			args:    []string{"day", "--date=2025-03-12"},
			want:    []string{"Wednesday, March 12, 2025", "Midterm"},
			notWant: []string{"Linear algebra"},
		},
		{
			name: "agenda",
			args: []string{"agenda"},
			want: []string{"Mon Mar 10 (today)", "Spring break", "all day"},
		},
		{
			name:    "type filter",
			args:    []string{"week", "--type=exam"},
			want:    []string{"Midterm"},
			notWant: []string{"Linear algebra"},
		},
		{
			name:    "search",
			args:    []string{"agenda", "--search=ALGEBRA"},
			want:    []string{"Linear algebra"},
			notWant: []string{"Midterm"},
		},
		{
			name: "empty day",
			args: []string{"day", "--date=2025-04-01"},
			want: []string{"No events"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := mustRun(t, store, tt.args...)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("unexpected %q:\n%s", w, out)
				}
			}
		})
	}

	if _, err := run(t, store, "week", "--priority=critical"); !errors.Is(err, event.ErrUnknownPriority) {
		t.Errorf("bad priority filter: got %v", err)
	}
}

func TestShow(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Study group", "--date=2025-03-10", "--start=18:00",
		"--url=https://meet.example.com/abc", "--tag=Math", "--repeat=FREQ=WEEKLY")
	id := onlyEvent(t, store).ID

	out := mustRun(t, store, "show", id)
	for _, want := range []string{"Study group", "https://meet.example.com/abc", "math", "Repeats", "15m before"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, store, "show", id+"@2025-03-24")
	if !strings.Contains(out, "Mon Mar 24 2025") {
		t.Errorf("occurrence not resolved:\n%s", out)
	}
}

func TestExportImport(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Lecture", "--date=2025-03-10", "--start=09:00", "--end=10:00",
		"--type=lecture", "--repeat=FREQ=WEEKLY;COUNT=10")
	mustRun(t, store, "add", "Project due", "--date=2025-03-20", "--start=23:59", "--type=assignment", "--priority=high")

	path := filepath.Join(t.TempDir(), "calendar.ics")
	out := mustRun(t, store, "export", path)
	if !strings.Contains(out, "Exported 2 events") {
		t.Errorf("export output = %q", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "RRULE:FREQ=WEEKLY;COUNT=10") {
		t.Errorf("exported calendar lacks the rule:\n%s", data)
	}

	dest := newTestStore(t)
	out = mustRun(t, dest, "import", path)
	if !strings.Contains(out, "Imported 2 events (0 skipped)") {
		t.Errorf("import output = %q", out)
	}
	events, _ := dest.AllEvents(context.Background())
	if len(events) != 2 || events[0].Title != "Lecture" || !events[0].IsRecurring() {
		t.Errorf("imported = %+v", events)
	}

	out = mustRun(t, dest, "import", path, "--dry-run")
	if !strings.Contains(out, "Would import 2 events") {
		t.Errorf("dry run output = %q", out)
	}
}

func TestExport_WriteFailures(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Lecture", "--date=2025-03-10", "--start=09:00", "--end=10:00", "--type=lecture")

	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope", "calendar.ics")
		out, err := run(t, store, "export", path)
		if err == nil || !strings.Contains(err.Error(), "creating") {
			t.Fatalf("got %v, want a create error", err)
		}
		if strings.Contains(out, "Exported") {
			t.Errorf("failed export reported success: %q", out)
		}
	})

	t.Run("device full", func(t *testing.T) {
		if _, err := os.Stat("/dev/full"); err != nil {
			t.Skip("no /dev/full")
		}
		out, err := run(t, store, "export", "/dev/full")
		if err == nil {
			t.Fatal("expected the write to fail")
		}
		if strings.Contains(out, "Exported") {
			t.Errorf("failed export reported success: %q", out)
		}
	})
}

func TestRemind(t *testing.T) {
	store := newTestStore(t)
	mustRun(t, store, "add", "Quiz", "--date=2025-03-10", "--start=08:30", "--type=quiz")
	mustRun(t, store, "add", "No reminder", "--date=2025-03-10", "--start=08:45", "--reminder=0")

	out := mustRun(t, store, "remind", "--within=1h")
	if !strings.Contains(out, "Quiz") || !strings.Contains(out, "in 30m") {
		t.Errorf("remind output = %q", out)
	}
	if strings.Contains(out, "No reminder") {
		t.Errorf("event without reminder listed:\n%s", out)
	}

	out = mustRun(t, store, "remind", "--within=5m")
	if !strings.Contains(out, "No reminders") {
		t.Errorf("remind output = %q", out)
	}
}

func TestSummary(t *testing.T) {
	store := newTestStore(t)

	out := mustRun(t, store, "summary")
	if !strings.Contains(out, "No events in this range.") {
		t.Errorf("empty summary = %q", out)
	}

	mustRun(t, store, "add", "Lecture", "--date=2025-03-11", "--start=09:00", "--type=lecture")
	mustRun(t, store, "add", "Lab", "--date=2025-03-11", "--start=14:00", "--type=lecture")
	mustRun(t, store, "add", "Exam", "--date=2025-03-13", "--start=09:00", "--type=exam", "--priority=urgent")

	out = mustRun(t, store, "summary")
	for _, want := range []string{"Sun Mar 9 - Sat Mar 15, 2025", "3 events", "Lecture 2", "Exam 1", "1 urgent", "Busiest day: Tue Mar 11"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestVersion(t *testing.T) {
	out := mustRun(t, newTestStore(t), "version")
	if !strings.Contains(out, "coursecal dev") {
		t.Errorf("version = %q", out)
	}
}
