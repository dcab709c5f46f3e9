// Package planner implements the week schedule optimizer: slot finding,
// day scoring, the greedy placement pass and the proposal/apply protocol.
package planner

import "time"

// ChangeKind names the kind of a proposed schedule change.
type ChangeKind string

// ChangeMove is the only change kind the optimizer emits.
const ChangeMove ChangeKind = "move"

// ScheduleChange is one proposed move of an event to a new start time.
// The title is denormalized for display. Applied flips to true once the
// change has been committed to the live collection.
type ScheduleChange struct {
	EventID       string     `json:"event_id"`
	EventTitle    string     `json:"event_title"`
	Kind          ChangeKind `json:"change_type"`
	OriginalStart time.Time  `json:"original_time"`
	NewStart      time.Time  `json:"new_time"`
	Applied       bool       `json:"applied"`
}

// Proposal is the output of one optimizer run. It is immutable once
// produced except for the Applied flags flipped by Apply. A proposal from
// before the event set last changed is stale and must be discarded by the
// caller.
type Proposal struct {
	ID                   string            `json:"proposal_id"`
	Changes              []*ScheduleChange `json:"changes"`
	CurrentMaxDailyLoad  int               `json:"current_max_daily_debt"`
	ProposedMaxDailyLoad int               `json:"proposed_max_daily_debt"`
	TotalReduction       int               `json:"total_debt_reduction"`
}

// TimeSlot is a free window where a recovery activity could be scheduled.
type TimeSlot struct {
	Start     time.Time `json:"start_time"`
	End       time.Time `json:"end_time"`
	Day       string    `json:"day"`
	Available bool      `json:"available"`
	Priority  string    `json:"priority"`
}

// Suggestion is one lightweight optimization hint (postpone or shorten),
// separate from the week optimizer's move proposals.
type Suggestion struct {
	ID            string     `json:"suggestion_id"`
	EventID       string     `json:"event_id"`
	Kind          string     `json:"suggestion_type"`
	NewStart      *time.Time `json:"new_time,omitempty"`
	DebtReduction int        `json:"debt_reduction"`
	Reason        string     `json:"reason"`
}
