package planner

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/quietweek/quietweek/internal/domain/costing"
	"github.com/quietweek/quietweek/internal/domain/model"
)

// recoveryDayEndHour bounds end-of-day recovery slots.
const recoveryDayEndHour = 19

// FindRecoverySlots returns gaps where a recovery activity of the given
// duration could be scheduled: between a day's events and after the last
// event before 19:00. Slots on days over the daily budget are marked high
// priority and, when prioritizeOverloaded is set, sorted first.
func (o *Optimizer) FindRecoverySlots(events []*model.Event, durationMinutes int, prioritizeOverloaded bool) []TimeSlot {
	if len(events) == 0 {
		return nil
	}

	duration := time.Duration(durationMinutes) * time.Minute

	dayEvents := make(map[string][]*model.Event)
	for _, e := range events {
		dayEvents[e.DayKey()] = append(dayEvents[e.DayKey()], e)
	}

	var slots []TimeSlot
	for _, evts := range dayEvents {
		dayCost := costing.DailyTotal(evts)
		priority := "normal"
		if dayCost > o.dailyBudget {
			priority = "high"
		}

		sorted := make([]*model.Event, len(evts))
		copy(sorted, evts)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

		for i := 0; i < len(sorted)-1; i++ {
			gapStart := sorted[i].End
			if sorted[i+1].Start.Sub(gapStart) >= duration {
				slots = append(slots, TimeSlot{
					Start:     gapStart,
					End:       gapStart.Add(duration),
					Day:       gapStart.Weekday().String(),
					Available: true,
					Priority:  priority,
				})
			}
		}

		lastEnd := sorted[0].End
		for _, e := range sorted {
			if e.End.After(lastEnd) {
				lastEnd = e.End
			}
		}
		endOfDay := atHour(lastEnd, recoveryDayEndHour)
		if endOfDay.Sub(lastEnd) >= duration {
			slots = append(slots, TimeSlot{
				Start:     lastEnd,
				End:       lastEnd.Add(duration),
				Day:       lastEnd.Weekday().String(),
				Available: true,
				Priority:  priority,
			})
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		if prioritizeOverloaded && slots[i].Priority != slots[j].Priority {
			return slots[i].Priority == "high"
		}
		return slots[i].Start.Before(slots[j].Start)
	})
	return slots
}

// GenerateSuggestions produces lightweight postpone/shorten hints for
// movable events when the week carries debt. It never moves anything
// itself; the week optimizer owns real rescheduling.
func (o *Optimizer) GenerateSuggestions(events []*model.Event, debt int) []Suggestion {
	if debt <= 0 {
		return nil
	}

	var suggestions []Suggestion
	for _, e := range events {
		if !e.IsMovable() {
			continue
		}
		if e.CostOnRecord() <= 0 {
			continue
		}
		if e.Start.Hour() >= 14 {
			continue
		}
		newStart := time.Date(e.Start.Year(), e.Start.Month(), e.Start.Day(), 15, 0, 0, 0, e.Start.Location())
		suggestions = append(suggestions, Suggestion{
			ID:            uuid.NewString(),
			EventID:       e.ID,
			Kind:          "postpone",
			NewStart:      &newStart,
			DebtReduction: int(math.RoundToEven(float64(e.CostOnRecord()) * 0.1)),
			Reason:        "Moving to afternoon reduces cognitive cost by 10%.",
		})
	}

	if len(suggestions) == 0 {
		for _, e := range events {
			if e.IsMovable() && e.Category == model.CategoryMeeting && e.DurationMinutes > 30 {
				suggestions = append(suggestions, Suggestion{
					ID:            uuid.NewString(),
					EventID:       e.ID,
					Kind:          "shorten",
					DebtReduction: int(math.RoundToEven(float64(e.CostOnRecord()) * 0.2)),
					Reason:        "Shortening long meetings reduces fatigue.",
				})
				break
			}
		}
	}

	return suggestions
}
