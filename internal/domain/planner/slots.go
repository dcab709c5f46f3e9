package planner

import (
	"sort"
	"time"

	"github.com/quietweek/quietweek/internal/domain/costing"
	"github.com/quietweek/quietweek/internal/domain/model"
)

// FindEarliestSlot returns the earliest start time on day where an event of
// durationMinutes fits inside [workStart, workEnd), given the day's already
// placed events.
//
// Two passes. Pass 1 (only when preferGap) requires just over the proximity
// threshold of clearance on both sides of the new event so it escapes the
// surcharge. Pass 2 falls back to tight packing against the existing events.
// The boolean result is false when neither pass finds room.
//
// dayEvents are trusted as the authoritative non-overlapping schedule for
// the day; they are not validated here.
func FindEarliestSlot(dayEvents []*model.Event, durationMinutes int, day time.Time, workStart, workEnd int, preferGap bool) (time.Time, bool) {
	sorted := make([]*model.Event, len(dayEvents))
	copy(sorted, dayEvents)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	dayStart := atHour(day, workStart)
	endOfDay := atHour(day, workEnd)
	duration := time.Duration(durationMinutes) * time.Minute
	buffer := time.Duration(costing.ProximityThresholdMinutes+1) * time.Minute

	// Pass 1: a slot with buffer clearance after the previous event and
	// before the next one.
	if preferGap && len(sorted) > 0 {
		cursor := dayStart
		for i, ev := range sorted {
			if i > 0 {
				if withGap := sorted[i-1].End.Add(buffer); withGap.After(cursor) {
					cursor = withGap
				}
			}
			latestStart := ev.Start.Add(-(buffer + duration))
			if !cursor.After(latestStart) {
				return cursor, true
			}
			cursor = ev.End.Add(buffer)
		}

		cursor = sorted[len(sorted)-1].End.Add(buffer)
		if endOfDay.Sub(cursor) >= duration {
			return cursor, true
		}
	}

	// Pass 2: tight packing, no clearance required.
	cursor := dayStart
	for _, ev := range sorted {
		if ev.Start.Sub(cursor) >= duration {
			return cursor, true
		}
		if ev.End.After(cursor) {
			cursor = ev.End
		}
	}
	if endOfDay.Sub(cursor) >= duration {
		return cursor, true
	}

	return time.Time{}, false
}

// atHour returns day's date at hour o'clock, in day's location.
func atHour(day time.Time, hour int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
}
