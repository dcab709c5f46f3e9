// Package costing implements the cognitive cost model for calendar events.
//
// Costs are integers at rest. Midpoint rounding is round-half-to-even
// (math.RoundToEven) everywhere a fractional running total is settled.
package costing

import (
	"math"
	"sort"
	"time"

	"github.com/quietweek/quietweek/internal/domain/model"
)

// Cost model constants.
const (
	// DailyBudget is the default maximum cumulative cost a day should carry.
	DailyBudget = 20

	// BaseCostPerQuarterHour is the ordinary per-15-minute rate.
	BaseCostPerQuarterHour = 1

	// ProximityThresholdMinutes is the gap under which an event picks up the
	// back-to-back surcharge.
	ProximityThresholdMinutes = 60

	// ProximityIncrement is the surcharge for near-back-to-back scheduling.
	ProximityIncrement = 2

	// afternoonHour marks the start of the afternoon discount window.
	afternoonHour = 14

	// afternoonFactor is the multiplier applied to afternoon events.
	afternoonFactor = 0.9

	toolSwitchPenalty   = 3
	perParticipantCost  = 0.5
	noAgendaPenalty     = 4
	deepWorkRateFactor  = 0.5
	minutesPerQuarter   = 15.0
)

// Recovery point values by activity kind. Negative: recovery offsets load.
const (
	RecoveryMicroBreak = -5
	RecoveryWalk       = -10
	RecoveryDeepRest   = -12
	RecoveryExercise   = -15
	RecoveryNature     = -20
)

// BaseCost computes an event's cost ignoring temporal neighbors.
//
// Recovery events map to a fixed negative value by duration bracket and
// ignore every other attribute. Deep work is charged half the ordinary
// per-quarter-hour rate with no meeting penalties. Everything else accrues
// cost from duration, tool switching, participants and a missing agenda,
// with a 10% discount for events starting at or after 14:00.
func BaseCost(e *model.Event) int {
	if e.Category == model.CategoryRecovery {
		return recoveryValue(e.DurationMinutes)
	}

	if e.Category == model.CategoryDeepWork {
		cost := float64(e.DurationMinutes) / minutesPerQuarter * BaseCostPerQuarterHour * deepWorkRateFactor
		return int(math.RoundToEven(cost))
	}

	// Ordinary events: meetings, admin, or not yet classified.
	// Unset meeting fields resolve to sane defaults here, nowhere else.
	participants := 1
	if e.Participants != nil {
		participants = *e.Participants
	}
	hasAgenda := true
	if e.HasAgenda != nil {
		hasAgenda = *e.HasAgenda
	}
	toolSwitch := e.RequiresToolSwitch != nil && *e.RequiresToolSwitch

	cost := float64(e.DurationMinutes) / minutesPerQuarter * BaseCostPerQuarterHour
	if toolSwitch {
		cost += toolSwitchPenalty
	}
	cost += float64(participants) * perParticipantCost
	if !hasAgenda {
		cost += noAgendaPenalty
	}
	if e.Start.Hour() >= afternoonHour {
		cost *= afternoonFactor
	}
	return int(math.RoundToEven(cost))
}

// CostWithProximity computes an event's cost including the proximity
// surcharge. prevEnd is the end time of the previous event on the day; the
// zero time means there is none. Recovery and other non-positive events
// never pick up the surcharge.
func CostWithProximity(e *model.Event, prevEnd time.Time) int {
	cost := BaseCost(e)
	if cost > 0 && !prevEnd.IsZero() {
		gap := e.Start.Sub(prevEnd).Minutes()
		if gap >= 0 && gap <= ProximityThresholdMinutes {
			cost += ProximityIncrement
		}
	}
	return cost
}

// ApplyProximity recomputes the cached cost of every event, walking them in
// start-time order and carrying the previous event's end time. This is the
// canonical recompute pass: it must be re-run whenever any event's timing or
// attributes change, because proximity depends on neighbor ordering.
//
// The input slice is not reordered; the returned slice is sorted by start
// time (event id as tiebreaker) and shares the same event pointers.
func ApplyProximity(events []*model.Event) []*model.Event {
	ordered := make([]*model.Event, len(events))
	copy(ordered, events)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})

	var prevEnd time.Time
	for _, e := range ordered {
		cost := CostWithProximity(e, prevEnd)
		e.ComputedCost = model.Ref(cost)
		prevEnd = e.End
	}
	return ordered
}

// DailyTotal recomputes costs for one day's events and sums them.
func DailyTotal(events []*model.Event) int {
	total := 0
	for _, e := range ApplyProximity(events) {
		total += e.CostOnRecord()
	}
	return total
}

// DailyTotals runs the recompute pass over the whole collection and groups
// the resulting costs by calendar day.
func DailyTotals(events []*model.Event) map[string]int {
	totals := make(map[string]int)
	for _, e := range ApplyProximity(events) {
		totals[e.DayKey()] += e.CostOnRecord()
	}
	return totals
}

// MaxDailyTotal returns the highest per-day total, or 0 with no events.
func MaxDailyTotal(events []*model.Event) int {
	max := 0
	first := true
	for _, total := range DailyTotals(events) {
		if first || total > max {
			max = total
			first = false
		}
	}
	return max
}

// Overdraft reports whether total exceeds budget, by how much, and the
// remaining headroom (negative when overdrafted).
func Overdraft(total, budget int) (overdrafted bool, amount, remaining int) {
	remaining = budget - total
	if remaining < 0 {
		return true, -remaining, remaining
	}
	return false, 0, remaining
}

func recoveryValue(durationMinutes int) int {
	switch {
	case durationMinutes <= 15:
		return RecoveryMicroBreak
	case durationMinutes <= 30:
		return RecoveryWalk
	case durationMinutes <= 60:
		return RecoveryDeepRest
	case durationMinutes <= 90:
		return RecoveryExercise
	default:
		return RecoveryNature
	}
}
