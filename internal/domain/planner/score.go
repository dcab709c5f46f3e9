package planner

import (
	"math"
	"time"

	"github.com/quietweek/quietweek/internal/domain/costing"
	"github.com/quietweek/quietweek/internal/domain/model"
)

// Score orders candidate (day, slot) placements. Smaller is better,
// compared field by field:
//
//  1. ExceedsBudget: staying at or under the daily budget beats everything.
//  2. DailyCost: lower simulated day total, balancing load across days.
//  3. Finish: earlier latest-end, packing days compactly.
//  4. DayKey: earlier calendar date, purely for determinism.
type Score struct {
	ExceedsBudget int
	DailyCost     float64
	Finish        float64
	DayKey        string
}

// Less reports whether s is strictly better than other.
func (s Score) Less(other Score) bool {
	if s.ExceedsBudget != other.ExceedsBudget {
		return s.ExceedsBudget < other.ExceedsBudget
	}
	if s.DailyCost != other.DailyCost {
		return s.DailyCost < other.DailyCost
	}
	if s.Finish != other.Finish {
		return s.Finish < other.Finish
	}
	return s.DayKey < other.DayKey
}

// worstScore is the sentinel for "no placement possible".
func worstScore() Score {
	return Score{ExceedsBudget: 2, DailyCost: math.Inf(1), Finish: math.Inf(1), DayKey: "never"}
}

// ScoreDay evaluates placing ev on day given the day's current schedule,
// using the standard work window. The returned slot is only meaningful
// when ok is true.
func (o *Optimizer) ScoreDay(dayEvents []*model.Event, ev *model.Event, day time.Time) (Score, time.Time, bool) {
	return o.scoreDayWithEnd(dayEvents, ev, day, o.workEndHour)
}

func (o *Optimizer) scoreDayWithEnd(dayEvents []*model.Event, ev *model.Event, day time.Time, workEnd int) (Score, time.Time, bool) {
	slot, ok := FindEarliestSlot(dayEvents, ev.DurationMinutes, day, o.workStartHour, workEnd, true)
	if !ok {
		return worstScore(), time.Time{}, false
	}

	// Simulate the day with the candidate placed. Clones only: scoring
	// must never leak costs into the real schedule.
	simulated := make([]*model.Event, 0, len(dayEvents)+1)
	for _, e := range dayEvents {
		simulated = append(simulated, e.Clone())
	}
	candidate := ev.WithTimes(slot, slot.Add(time.Duration(ev.DurationMinutes)*time.Minute))
	simulated = append(simulated, candidate)
	costing.ApplyProximity(simulated)

	dailyCost := 0
	finish := simulated[0].End
	for _, e := range simulated {
		dailyCost += e.CostOnRecord()
		if e.End.After(finish) {
			finish = e.End
		}
	}

	exceeds := 0
	if dailyCost > o.dailyBudget {
		exceeds = 1
	}

	return Score{
		ExceedsBudget: exceeds,
		DailyCost:     float64(dailyCost),
		Finish:        float64(finish.Hour()) + float64(finish.Minute())/60.0,
		DayKey:        day.Format(model.DayKeyFormat),
	}, slot, true
}
