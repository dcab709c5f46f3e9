// Package repository defines the event store interface and errors.
package repository

import (
	"context"

	"github.com/quietweek/quietweek/internal/domain/model"
)

// Store provides read/write access to the tracked calendar events.
//
// Implementations are safe for concurrent use, but returned events are
// live pointers: callers that mutate them (the optimizer's apply path,
// cost recomputes) must hold the service's writer lock.
type Store interface {
	// List returns all events ordered by start time, then id.
	List(ctx context.Context) []*model.Event

	// Get returns the event with the given id.
	// Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (*model.Event, error)

	// Add inserts a new event. An empty id gets one assigned; the
	// event is returned with its id set. Returns ErrDuplicateID when
	// the id is already taken.
	Add(ctx context.Context, e *model.Event) error

	// Update replaces the stored event with the same id.
	// Returns ErrNotFound if the id is unknown.
	Update(ctx context.Context, e *model.Event) error

	// Remove deletes the event with the given id.
	// Returns ErrNotFound if the id is unknown.
	Remove(ctx context.Context, id string) error

	// MergeRemote reconciles events fetched from an external calendar
	// by remote id: unseen remote events are added, known ones get
	// their time and title refreshed while local enrichments
	// (category, flexibility, costs) are kept, and with prune set
	// remote events missing from the pass are dropped. Returns how
	// many were added, updated and removed.
	MergeRemote(ctx context.Context, events []*model.Event, prune bool) (added, updated, removed int)

	// Count returns the number of tracked events.
	Count(ctx context.Context) int
}
