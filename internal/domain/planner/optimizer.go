package planner

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quietweek/quietweek/internal/domain/costing"
	"github.com/quietweek/quietweek/internal/domain/model"
	"github.com/quietweek/quietweek/pkg/logger"
)

// Default work window hours.
const (
	defaultWorkStartHour   = 9
	defaultWorkEndHour     = 17
	defaultExtendedEndHour = 19
)

// Optimizer redistributes movable events across the week to keep every day
// at or under the daily budget where possible. It is a pure computation
// over the events it is handed; the caller serializes access to the shared
// collection around OptimizeWeek and Apply.
type Optimizer struct {
	dailyBudget     int
	workStartHour   int
	workEndHour     int
	extendedEndHour int
	log             logger.Logger
}

// Option applies a configuration option to the Optimizer.
type Option func(*Optimizer)

// WithDailyBudget sets the budget a day's simulated cost is compared to.
func WithDailyBudget(budget int) Option {
	return func(o *Optimizer) {
		if budget > 0 {
			o.dailyBudget = budget
		}
	}
}

// WithWorkHours sets the standard work window.
func WithWorkHours(startHour, endHour int) Option {
	return func(o *Optimizer) {
		if startHour >= 0 && endHour > startHour {
			o.workStartHour = startHour
			o.workEndHour = endHour
		}
	}
}

// WithExtendedEndHour sets the fallback end-of-day for the second
// placement round.
func WithExtendedEndHour(hour int) Option {
	return func(o *Optimizer) {
		if hour > 0 {
			o.extendedEndHour = hour
		}
	}
}

// WithLogger sets the logger used for placement diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.log = l
		}
	}
}

// New constructs an Optimizer with default configuration.
func New(opts ...Option) *Optimizer {
	o := &Optimizer{
		dailyBudget:     costing.DailyBudget,
		workStartHour:   defaultWorkStartHour,
		workEndHour:     defaultWorkEndHour,
		extendedEndHour: defaultExtendedEndHour,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// placement records where a movable event landed during the pass.
type placement struct {
	dayKey string
	start  time.Time
}

// OptimizeWeek proposes how to redistribute movable events across the
// Mon-Fri week containing the earliest event. Single pass, deterministic
// for identical input: movable events are processed by descending base
// cost with id as tiebreaker, each placed on the best-scoring day. Events
// that fit nowhere, even with extended hours, are skipped without error.
func (o *Optimizer) OptimizeWeek(events []*model.Event) *Proposal {
	proposalID := uuid.NewString()

	// Movable: explicitly flexible AND debt-adding. Recovery and other
	// non-positive events stay put regardless of their flag.
	var movable, fixed []*model.Event
	for _, e := range events {
		if e.IsMovable() && costing.BaseCost(e) > 0 {
			movable = append(movable, e)
		} else {
			fixed = append(fixed, e)
		}
	}

	currentMax := costing.MaxDailyTotal(events)

	if len(movable) == 0 {
		return &Proposal{
			ID:                   proposalID,
			Changes:              []*ScheduleChange{},
			CurrentMaxDailyLoad:  currentMax,
			ProposedMaxDailyLoad: currentMax,
			TotalReduction:       0,
		}
	}

	weekDays := o.weekDates(events)
	if len(weekDays) == 0 {
		return &Proposal{
			ID:                   proposalID,
			Changes:              []*ScheduleChange{},
			CurrentMaxDailyLoad:  currentMax,
			ProposedMaxDailyLoad: currentMax,
			TotalReduction:       0,
		}
	}

	// Working schedules seeded with everything that cannot move. Fixed
	// events outside Mon-Fri keep their own buckets but are never
	// placement candidates.
	daySchedules := make(map[string][]*model.Event)
	for _, e := range fixed {
		daySchedules[e.DayKey()] = append(daySchedules[e.DayKey()], e)
	}
	for _, day := range weekDays {
		key := day.Format(model.DayKeyFormat)
		if _, ok := daySchedules[key]; !ok {
			daySchedules[key] = nil
		}
	}

	// Base cost is proximity-independent, so this ordering cannot shift
	// with where earlier events in the same pass got placed.
	ordered := make([]*model.Event, len(movable))
	copy(ordered, movable)
	sort.Slice(ordered, func(i, j int) bool {
		ci, cj := costing.BaseCost(ordered[i]), costing.BaseCost(ordered[j])
		if ci != cj {
			return ci > cj
		}
		return ordered[i].ID < ordered[j].ID
	})

	placements := make(map[string]placement)

	for _, ev := range ordered {
		bestScore := worstScore()
		var bestKey string
		var bestSlot time.Time
		found := false

		for _, day := range weekDays {
			key := day.Format(model.DayKeyFormat)
			score, slot, ok := o.ScoreDay(daySchedules[key], ev, day)
			if ok && score.Less(bestScore) {
				bestScore = score
				bestKey = key
				bestSlot = slot
				found = true
			}
		}

		if !found {
			// Extended-hours retry, same scoring.
			for _, day := range weekDays {
				key := day.Format(model.DayKeyFormat)
				score, slot, ok := o.scoreDayWithEnd(daySchedules[key], ev, day, o.extendedEndHour)
				if ok && score.Less(bestScore) {
					bestScore = score
					bestKey = key
					bestSlot = slot
					found = true
				}
			}
		}

		if !found {
			if o.log != nil {
				o.log.Debug(context.Background(), "no slot anywhere for event, leaving in place",
					logger.String("event_id", ev.ID),
					logger.Int("duration_minutes", ev.DurationMinutes),
				)
			}
			continue
		}

		placements[ev.ID] = placement{dayKey: bestKey, start: bestSlot}
		placed := ev.WithTimes(bestSlot, bestSlot.Add(time.Duration(ev.DurationMinutes)*time.Minute))
		daySchedules[bestKey] = append(daySchedules[bestKey], placed)
	}

	// Emit a change only when the landing spot differs from the original.
	changes := make([]*ScheduleChange, 0, len(placements))
	for _, ev := range ordered {
		p, ok := placements[ev.ID]
		if !ok {
			continue
		}
		moved := ev.DayKey() != p.dayKey ||
			ev.Start.Hour() != p.start.Hour() ||
			ev.Start.Minute() != p.start.Minute()
		if !moved {
			continue
		}
		changes = append(changes, &ScheduleChange{
			EventID:       ev.ID,
			EventTitle:    ev.Title,
			Kind:          ChangeMove,
			OriginalStart: ev.Start,
			NewStart:      p.start,
		})
	}

	proposedMax := 0
	first := true
	for _, dayEvents := range daySchedules {
		total := costing.DailyTotal(dayEvents)
		if first || total > proposedMax {
			proposedMax = total
			first = false
		}
	}

	reduction := currentMax - proposedMax
	if reduction < 0 {
		reduction = 0
	}

	return &Proposal{
		ID:                   proposalID,
		Changes:              changes,
		CurrentMaxDailyLoad:  currentMax,
		ProposedMaxDailyLoad: proposedMax,
		TotalReduction:       reduction,
	}
}

// weekDates returns Monday through Friday of the week containing the
// earliest event, each at the work start hour in that event's location.
func (o *Optimizer) weekDates(events []*model.Event) []time.Time {
	if len(events) == 0 {
		return nil
	}

	earliest := events[0].Start
	for _, e := range events[1:] {
		if e.Start.Before(earliest) {
			earliest = e.Start
		}
	}

	// time.Weekday has Sunday=0; shift so Monday=0.
	offset := (int(earliest.Weekday()) + 6) % 7
	monday := earliest.AddDate(0, 0, -offset)

	days := make([]time.Time, 0, 5)
	for i := 0; i < 5; i++ {
		d := monday.AddDate(0, 0, i)
		days = append(days, time.Date(d.Year(), d.Month(), d.Day(), o.workStartHour, 0, 0, 0, d.Location()))
	}
	return days
}
