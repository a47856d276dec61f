package event

import (
	"context"
	"time"
)

// Store defines the storage interface for events.
type Store interface {
	// ListEvents returns events overlapping the inclusive date range, plus
	// every recurring series that starts on or before to. Series are returned
	// unexpanded. A non-empty courseID keeps that course's events and the
	// events without a course; empty means all courses.
	ListEvents(ctx context.Context, from, to time.Time, courseID string) ([]*CalendarEvent, error)

	// GetEvent retrieves an event by id.
	// Returns ErrEventNotFound if there is no such event.
	GetEvent(ctx context.Context, id string) (*CalendarEvent, error)

	// CreateEvent validates and persists a draft, returning the stored event.
	CreateEvent(ctx context.Context, d Draft) (*CalendarEvent, error)

	// UpdateEvent applies a patch and returns the updated event.
	UpdateEvent(ctx context.Context, id string, p Patch) (*CalendarEvent, error)

	// DeleteEvent removes an event.
	DeleteEvent(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
