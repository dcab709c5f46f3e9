package seedevents

import (
	"context"
	"time"

	"github.com/quietweek/quietweek/pkg/logger"
)

// Event mirrors the JSON schema accepted by POST /events.
type Event struct {
	Title              string `json:"title"`
	Description        string `json:"description,omitempty"`
	Start              string `json:"start_time"`
	End                string `json:"end_time"`
	Participants       *int   `json:"participants,omitempty"`
	HasAgenda          *bool  `json:"has_agenda,omitempty"`
	RequiresToolSwitch *bool  `json:"requires_tool_switch,omitempty"`
	Category           string `json:"event_type,omitempty"`
	Flexible           *bool  `json:"is_flexible,omitempty"`
}

type eventTemplate struct {
	title        string
	description  string
	day          int // offset from Monday
	hour         int
	minute       int
	minutes      int
	participants int
	hasAgenda    bool
	toolSwitch   bool
	flexible     bool
}

// demoWeek is a deliberately overloaded Monday followed by quieter
// days, so the optimizer has material to work with. Categories are left
// to the classifier.
var demoWeek = []eventTemplate{
	{title: "Quarterly planning", description: "roadmap planning session", day: 0, hour: 9, minutes: 120, participants: 6, hasAgenda: true, flexible: true},
	{title: "Design sync", description: "UX walkthrough", day: 0, hour: 11, minute: 30, minutes: 90, participants: 4, hasAgenda: false, flexible: true},
	{title: "Vendor call", description: "contract renewal", day: 0, hour: 13, minute: 30, minutes: 60, participants: 4, hasAgenda: true, toolSwitch: true, flexible: true},
	{title: "1:1 with manager", day: 0, hour: 15, minutes: 30, participants: 2, hasAgenda: true},

	{title: "Daily standup", day: 1, hour: 9, minute: 15, minutes: 15, participants: 5, hasAgenda: true},
	{title: "Deep work: coding block", description: "focus time for the parser work", day: 1, hour: 10, minutes: 120, participants: 1, hasAgenda: true},
	{title: "Lunch walk", day: 1, hour: 12, minute: 30, minutes: 30, participants: 1, hasAgenda: true},

	{title: "Daily standup", day: 2, hour: 9, minute: 15, minutes: 15, participants: 5, hasAgenda: true},
	{title: "Architecture review", description: "storage layer design", day: 2, hour: 14, minutes: 60, participants: 5, hasAgenda: true, flexible: true},

	{title: "Daily standup", day: 3, hour: 9, minute: 15, minutes: 15, participants: 5, hasAgenda: true},
	{title: "Email and expense admin", day: 3, hour: 11, minutes: 45, participants: 1, hasAgenda: true, flexible: true},
	{title: "Customer demo", day: 3, hour: 15, minutes: 45, participants: 8, hasAgenda: true, toolSwitch: true},

	{title: "Daily standup", day: 4, hour: 9, minute: 15, minutes: 15, participants: 5, hasAgenda: true},
	{title: "Sprint retro", description: "what went well, what did not", day: 4, hour: 14, minutes: 60, participants: 5, hasAgenda: false, flexible: true},
}

// generateEvents expands the demo templates onto the week containing
// anchor (anchored to its Monday).
func generateEvents(ctx context.Context, anchor time.Time, stats *Stats) []Event {
	monday := anchor.AddDate(0, 0, -int((anchor.Weekday()+6)%7))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)

	events := make([]Event, 0, len(demoWeek))
	for _, tpl := range demoWeek {
		start := monday.AddDate(0, 0, tpl.day).
			Add(time.Duration(tpl.hour)*time.Hour + time.Duration(tpl.minute)*time.Minute)
		end := start.Add(time.Duration(tpl.minutes) * time.Minute)

		participants := tpl.participants
		hasAgenda := tpl.hasAgenda
		toolSwitch := tpl.toolSwitch
		flexible := tpl.flexible
		events = append(events, Event{
			Title:              tpl.title,
			Description:        tpl.description,
			Start:              start.Format(time.RFC3339),
			End:                end.Format(time.RFC3339),
			Participants:       &participants,
			HasAgenda:          &hasAgenda,
			RequiresToolSwitch: &toolSwitch,
			Flexible:           &flexible,
		})
	}

	stats.Generated = len(events)
	logger.Get().Info(ctx, "generated demo week",
		logger.Int("events", len(events)),
		logger.String("monday", monday.Format("2006-01-02")))
	return events
}
