// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"time"
)

// DayKeyFormat is the canonical calendar-day bucket key.
const DayKeyFormat = "2006-01-02"

// Category classifies an event for costing purposes.
type Category string

// Known event categories. An empty Category means the event has not been
// classified yet and is costed as an ordinary event.
const (
	CategoryMeeting  Category = "meeting"
	CategoryDeepWork Category = "deep_work"
	CategoryRecovery Category = "recovery"
	CategoryAdmin    Category = "admin"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMeeting, CategoryDeepWork, CategoryRecovery, CategoryAdmin:
		return true
	}
	return false
}

// Event is a scheduled block of time on the calendar.
//
// Meeting attributes and the flexibility flag are pointers because imported
// events arrive incomplete: nil means "not yet provided" and the cost model
// resolves defaults centrally. ComputedCost is a cache maintained by the
// proximity recompute pass; ActualCost is an override observed by a
// vital-sign session and is preferred by budget reporting but never by the
// planner.
type Event struct {
	ID              string    `json:"id"`
	RemoteID        string    `json:"remote_id,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Start           time.Time `json:"start_time"`
	End             time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`

	Participants       *int  `json:"participants,omitempty"`
	HasAgenda          *bool `json:"has_agenda,omitempty"`
	RequiresToolSwitch *bool `json:"requires_tool_switch,omitempty"`

	Category Category `json:"category,omitempty"`
	Flexible *bool    `json:"is_flexible,omitempty"`

	ComputedCost *int `json:"computed_cost,omitempty"`
	ActualCost   *int `json:"actual_cost,omitempty"`
}

// Validation errors surfaced at the data model boundary.
var (
	ErrEndBeforeStart  = errors.New("event end must be after start")
	ErrInvalidDuration = errors.New("event duration must be positive and match end minus start")
	ErrMissingTitle    = errors.New("event title must not be empty")
	ErrInvalidCategory = errors.New("unknown event category")
)

// Validate checks boundary invariants. The planner assumes validated input
// and does not re-check them.
func (e *Event) Validate() error {
	if e.Title == "" {
		return ErrMissingTitle
	}
	if !e.End.After(e.Start) {
		return ErrEndBeforeStart
	}
	if e.DurationMinutes <= 0 || int(e.End.Sub(e.Start).Minutes()) != e.DurationMinutes {
		return ErrInvalidDuration
	}
	return nil
}

// Clone returns a deep copy of the event. Pointer fields are duplicated so
// simulations never alias the original.
func (e *Event) Clone() *Event {
	c := *e
	c.Participants = cloneRef(e.Participants)
	c.HasAgenda = cloneRef(e.HasAgenda)
	c.RequiresToolSwitch = cloneRef(e.RequiresToolSwitch)
	c.Flexible = cloneRef(e.Flexible)
	c.ComputedCost = cloneRef(e.ComputedCost)
	c.ActualCost = cloneRef(e.ActualCost)
	return &c
}

// WithTimes returns a clone placed at [start, end). The duration is
// re-derived from the new bounds. The receiver is never mutated.
func (e *Event) WithTimes(start, end time.Time) *Event {
	c := e.Clone()
	c.Start = start
	c.End = end
	c.DurationMinutes = int(end.Sub(start).Minutes())
	return c
}

// DayKey returns the calendar-day bucket the event starts on.
func (e *Event) DayKey() string {
	return e.Start.Format(DayKeyFormat)
}

// IsMovable reports whether the event is explicitly flagged movable.
// Unset flexibility counts as not movable.
func (e *Event) IsMovable() bool {
	return e.Flexible != nil && *e.Flexible
}

// CostOnRecord returns the cached computed cost, or 0 when none is set.
func (e *Event) CostOnRecord() int {
	if e.ComputedCost == nil {
		return 0
	}
	return *e.ComputedCost
}

// BudgetCost is the cost budget reporting should charge for the event:
// the actual session-observed cost when present, the computed cost
// otherwise.
func (e *Event) BudgetCost() int {
	if e.ActualCost != nil {
		return *e.ActualCost
	}
	return e.CostOnRecord()
}

// Ref returns a pointer to v. Convenient for the optional event fields.
func Ref[T any](v T) *T { return &v }

func cloneRef[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
