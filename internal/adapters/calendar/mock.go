package calendar

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// mockTemplate describes one demo event relative to the week's Monday.
type mockTemplate struct {
	day         int // 0 = Monday
	hour        int
	minute      int
	minutes     int
	title       string
	description string
}

// A deterministic working week: heavy Monday, lighter rest, so the
// optimizer has something to fix out of the box.
var mockWeek = []mockTemplate{
	{0, 9, 0, 60, "Sprint Planning", "Planning session for the upcoming sprint"},
	{0, 10, 30, 45, "Client Call", "Call with external stakeholders"},
	{0, 11, 30, 60, "Design Review", "Review the latest design mockups"},
	{0, 13, 0, 60, "All Hands", "Company-wide meeting"},
	{0, 14, 30, 30, "1:1 with Manager", "Weekly check-in with direct manager"},
	{1, 9, 0, 15, "Team Standup", "Daily sync with the team"},
	{1, 10, 0, 120, "Deep Work: Feature Dev", "Focused development time"},
	{2, 9, 0, 15, "Team Standup", "Daily sync with the team"},
	{2, 11, 0, 30, "Code Review Session", "Review pending pull requests"},
	{3, 9, 0, 15, "Team Standup", "Daily sync with the team"},
	{3, 10, 0, 90, "Focus Time", "Protected focus time block"},
	{3, 14, 0, 30, "Walking Meeting", "Walk and talk session"},
	{4, 9, 0, 15, "Team Standup", "Daily sync with the team"},
	{4, 11, 0, 15, "Quick Sync", "Brief alignment discussion"},
}

// MockFeed renders a deterministic demo week as an ICS payload,
// anchored to the Monday of the week containing ref. It runs through
// the same parse/expand/merge pipeline as a real feed.
func MockFeed(ref time.Time) []byte {
	monday := ref.AddDate(0, 0, -int((ref.Weekday()+6)%7))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, ref.Location())

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//quietweek//mock feed//EN")

	for i, tpl := range mockWeek {
		day := monday.AddDate(0, 0, tpl.day)
		start := time.Date(day.Year(), day.Month(), day.Day(), tpl.hour, tpl.minute, 0, 0, day.Location())

		uid := fmt.Sprintf("mock-%s-%d@quietweek", monday.Format("20060102"), i)
		ev := cal.AddEvent(uid)
		ev.SetSummary(tpl.title)
		ev.SetDescription(tpl.description)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(time.Duration(tpl.minutes) * time.Minute))
		ev.SetDtStampTime(monday)
	}

	return []byte(cal.Serialize())
}
