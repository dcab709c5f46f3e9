package calendar

import (
	"context"
	"time"

	"github.com/quietweek/quietweek/internal/domain/model"
	"github.com/quietweek/quietweek/pkg/logger"
	"github.com/teambition/rrule-go"
)

// maxOccurrencesPerEvent caps recurrence expansion so a malformed RRULE
// cannot flood the store.
const maxOccurrencesPerEvent = 100

// Window is the inclusive time range recurring events are expanded
// into.
type Window struct {
	Start time.Time
	End   time.Time
}

// Expand turns parsed VEVENTs into store events within the window.
// Recurring events become one event per occurrence, keyed by UID plus
// occurrence start so every instance reconciles independently. All-day
// events are skipped: they occupy no working hours and carry no
// cognitive cost.
func Expand(ctx context.Context, parsed []ParsedEvent, window Window) []*model.Event {
	log := logger.Named("calendar")
	out := make([]*model.Event, 0, len(parsed))

	for _, ev := range parsed {
		if ev.AllDay {
			continue
		}
		if ev.RawRRule == "" {
			if ev.End.Before(window.Start) || ev.Start.After(window.End) {
				continue
			}
			out = append(out, toEvent(ev, ev.UID, ev.Start, ev.End))
			continue
		}

		r, err := rrule.StrToRRule(ev.RawRRule)
		if err != nil {
			log.Warn(ctx, "skipping event with unparsable RRULE",
				logger.String("uid", ev.UID),
				logger.String("rrule", ev.RawRRule),
				logger.Error(err))
			continue
		}
		r.DTStart(ev.Start)

		var set rrule.Set
		set.RRule(r)
		for _, ex := range ev.ExDates {
			set.ExDate(ex.In(ev.Start.Location()))
		}

		duration := ev.End.Sub(ev.Start)
		occStarts := set.Between(
			window.Start.In(ev.Start.Location()),
			window.End.In(ev.Start.Location()),
			true,
		)
		if len(occStarts) > maxOccurrencesPerEvent {
			log.Warn(ctx, "truncating recurrence expansion",
				logger.String("uid", ev.UID),
				logger.Int("cap", maxOccurrencesPerEvent))
			occStarts = occStarts[:maxOccurrencesPerEvent]
		}

		for _, start := range occStarts {
			remoteID := ev.UID + "/" + start.UTC().Format(time.RFC3339)
			out = append(out, toEvent(ev, remoteID, start, start.Add(duration)))
		}
	}

	return out
}

// toEvent maps a parsed occurrence onto a store event. Category,
// flexibility and participants stay unset; classification and user
// enrichment own those.
func toEvent(ev ParsedEvent, remoteID string, start, end time.Time) *model.Event {
	return &model.Event{
		RemoteID:        remoteID,
		Title:           ev.Summary,
		Description:     ev.Description,
		Start:           start,
		End:             end,
		DurationMinutes: int(end.Sub(start).Minutes()),
	}
}
