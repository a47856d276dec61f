package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/javiermolinar/coursecal/internal/dateutil"
	"github.com/javiermolinar/coursecal/internal/event"
	"github.com/javiermolinar/coursecal/internal/llm"
)

func at(d, h int) time.Time {
	return time.Date(2024, 3, d, h, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

// week of Sun Mar 10 - Sat Mar 16 2024
var week = dateutil.Span(at(10, 0), at(16, 0))

func fixtures() []*event.CalendarEvent {
	events := []*event.CalendarEvent{
		{ID: "a", Title: "Lecture", Type: event.TypeLecture, Priority: event.PriorityMedium, StartTime: at(11, 9), EndTime: ptr(at(11, 10))},
		{ID: "b", Title: "Quiz", Type: event.TypeQuiz, Priority: event.PriorityHigh, StartTime: at(13, 14)},
		{ID: "c", Title: "Lab", Type: event.TypeLecture, Priority: event.PriorityMedium, StartTime: at(13, 9)},
		{ID: "d", Title: "Club", Type: event.TypeMeeting, Priority: event.PriorityLow, StartTime: at(14, 18), IsCancelled: true},
		{ID: "e", Title: "Break", Type: event.TypeHoliday, Priority: event.PriorityLow, StartTime: at(15, 0), EndTime: ptr(at(18, 0)), IsAllDay: true},
		{ID: "f", Title: "Outside", Type: event.TypeExam, Priority: event.PriorityUrgent, StartTime: at(20, 9)},
	}
	for _, e := range events {
		e.Visibility = event.VisibilityPrivate
	}
	return events
}

func TestSummarize(t *testing.T) {
	now := at(13, 12)
	s := Summarize(fixtures(), week, now)

	if s.Total != 5 || len(s.Events) != 5 {
		t.Fatalf("Total = %d, events = %d, want 5", s.Total, len(s.Events))
	}
	if s.Cancelled != 1 || s.AllDay != 1 {
		t.Errorf("Cancelled = %d, AllDay = %d", s.Cancelled, s.AllDay)
	}
	if s.ByType[event.TypeLecture] != 2 || s.ByType[event.TypeMeeting] != 0 || s.ByType[event.TypeExam] != 0 {
		t.Errorf("ByType = %v", s.ByType)
	}
	if s.ByPriority[event.PriorityHigh] != 1 || s.ByPriority[event.PriorityMedium] != 2 || s.ByPriority[event.PriorityLow] != 1 {
		t.Errorf("ByPriority = %v", s.ByPriority)
	}
	if s.Past != 2 || s.Upcoming != 2 {
		t.Errorf("Past = %d, Upcoming = %d", s.Past, s.Upcoming)
	}
	if s.Next == nil || s.Next.ID != "b" {
		t.Errorf("Next = %+v, want the quiz", s.Next)
	}
	if !s.BusiestDay.Equal(at(13, 0)) || s.BusiestCount != 2 {
		t.Errorf("BusiestDay = %v (%d)", s.BusiestDay, s.BusiestCount)
	}
	if s.Events[0].ID != "a" || s.Events[1].ID != "c" {
		t.Errorf("events not sorted by start: %s, %s", s.Events[0].ID, s.Events[1].ID)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, week, at(13, 12))
	if s.Total != 0 || s.Next != nil || !s.BusiestDay.IsZero() {
		t.Errorf("got %+v", s)
	}
}

type fakeStore struct {
	event.Store
	events []*event.CalendarEvent
	err    error
}

func (f *fakeStore) ListEvents(context.Context, time.Time, time.Time, string) ([]*event.CalendarEvent, error) {
	return f.events, f.err
}

type fakeClient struct {
	messages []llm.Message
}

func (f *fakeClient) Chat(_ context.Context, messages []llm.Message) (string, error) {
	f.messages = messages
	return "FOCUS: quiz week", nil
}

func (f *fakeClient) ChatJSON(context.Context, []llm.Message, any) error {
	return errors.New("not used")
}

func TestBuild(t *testing.T) {
	series := &event.CalendarEvent{
		ID: "s", Title: "Tutorial", Type: event.TypeLesson, Priority: event.PriorityMedium,
		Visibility: event.VisibilityPrivate, StartTime: at(4, 16),
		Recurrence: &event.Recurrence{Frequency: event.Weekly},
	}
	broken := &event.CalendarEvent{ID: "x", Title: "", Type: event.TypeOther, StartTime: at(12, 9)}
	quiz := &event.CalendarEvent{
		ID: "q", Title: "Quiz", Type: event.TypeQuiz, Priority: event.PriorityHigh,
		Visibility: event.VisibilityPrivate, StartTime: at(13, 14),
	}
	store := &fakeStore{events: []*event.CalendarEvent{series, broken, quiz}}
	client := &fakeClient{}

	s, err := Build(context.Background(), store, BuildOptions{
		Window:         week,
		Now:            at(10, 8),
		IncludeInsight: true,
		Client:         client,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if s.Total != 2 || s.ByType[event.TypeLesson] != 1 {
		t.Errorf("Total = %d, ByType = %v", s.Total, s.ByType)
	}
	if len(s.Rejected) != 1 || s.Rejected[0].Event.ID != "x" {
		t.Errorf("Rejected = %+v", s.Rejected)
	}
	if s.Next == nil || s.Next.SeriesID != "s" {
		t.Errorf("Next = %+v, want the tutorial occurrence", s.Next)
	}
	if s.Insight != "FOCUS: quiz week" {
		t.Errorf("Insight = %q", s.Insight)
	}
	if len(client.messages) != 2 || !strings.Contains(client.messages[1].Content, "Quiz") {
		t.Errorf("review prompt missing events: %+v", client.messages)
	}
}

func TestBuild_StoreError(t *testing.T) {
	boom := errors.New("disk full")
	_, err := Build(context.Background(), &fakeStore{err: boom}, BuildOptions{Window: week})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped store error", err)
	}
}

func TestBuild_InsightRequiresModel(t *testing.T) {
	store := &fakeStore{events: fixtures()}
	if _, err := Build(context.Background(), store, BuildOptions{Window: week, Now: at(10, 8), IncludeInsight: true}); err == nil {
		t.Fatal("expected an error without a model")
	}
}
