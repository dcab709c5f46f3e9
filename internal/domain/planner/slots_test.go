package planner_test

import (
	"testing"
	"time"

	"github.com/quietweek/quietweek/internal/domain/model"
	"github.com/quietweek/quietweek/internal/domain/planner"
	. "github.com/smartystreets/goconvey/convey"
)

var monday = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func block(id string, start time.Time, minutes int) *model.Event {
	return &model.Event{
		ID:              id,
		Title:           id,
		Start:           start,
		End:             start.Add(time.Duration(minutes) * time.Minute),
		DurationMinutes: minutes,
	}
}

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

func TestFindEarliestSlot(t *testing.T) {
	Convey("Given an empty day", t, func() {
		Convey("Then the slot should be the start of the work window", func() {
			slot, ok := planner.FindEarliestSlot(nil, 30, monday, 9, 17, true)
			So(ok, ShouldBeTrue)
			So(slot, ShouldResemble, at(monday, 9, 0))
		})
	})

	Convey("Given a day with one mid-morning event", t, func() {
		day := []*model.Event{block("a", at(monday, 10, 0), 60)}

		Convey("When preferring a gap", func() {
			slot, ok := planner.FindEarliestSlot(day, 30, monday, 9, 17, true)

			Convey("Then the slot should sit just past the proximity buffer after the event", func() {
				So(ok, ShouldBeTrue)
				So(slot, ShouldResemble, at(monday, 12, 1))
			})
		})

		Convey("When tight packing", func() {
			slot, ok := planner.FindEarliestSlot(day, 30, monday, 9, 17, false)

			Convey("Then the slot should be the start of the day", func() {
				So(ok, ShouldBeTrue)
				So(slot, ShouldResemble, at(monday, 9, 0))
			})
		})
	})

	Convey("Given a late-morning event with a buffered gap before it", t, func() {
		day := []*model.Event{block("a", at(monday, 11, 0), 60)}

		Convey("Then the gap-preferring pass should use the start of the day", func() {
			// 9:00 + 30m + 61m buffer = 10:31, before the 11:00 start.
			slot, ok := planner.FindEarliestSlot(day, 30, monday, 9, 17, true)
			So(ok, ShouldBeTrue)
			So(slot, ShouldResemble, at(monday, 9, 0))
		})
	})

	Convey("Given a day too packed for gaps but not for tight packing", t, func() {
		day := []*model.Event{
			block("a", at(monday, 9, 0), 120),
			block("b", at(monday, 12, 0), 120),
			block("c", at(monday, 15, 0), 90),
		}

		Convey("Then the gap pass should fail and the tight pass should find the 11:00 hole", func() {
			slot, ok := planner.FindEarliestSlot(day, 60, monday, 9, 17, true)
			So(ok, ShouldBeTrue)
			So(slot, ShouldResemble, at(monday, 11, 0))
		})
	})

	Convey("Given a completely full day", t, func() {
		day := []*model.Event{block("a", at(monday, 9, 0), 480)}

		Convey("Then no slot should be found within standard hours", func() {
			_, ok := planner.FindEarliestSlot(day, 30, monday, 9, 17, true)
			So(ok, ShouldBeFalse)
		})

		Convey("Then extending the day should open the evening", func() {
			slot, ok := planner.FindEarliestSlot(day, 30, monday, 9, 19, false)
			So(ok, ShouldBeTrue)
			So(slot, ShouldResemble, at(monday, 17, 0))
		})
	})

	Convey("Given an event that would not fit the remaining window", t, func() {
		day := []*model.Event{block("a", at(monday, 9, 0), 420)} // ends 16:00

		Convey("Then a 90-minute event should not fit but a 60-minute one should", func() {
			_, ok := planner.FindEarliestSlot(day, 90, monday, 9, 17, false)
			So(ok, ShouldBeFalse)

			slot, ok := planner.FindEarliestSlot(day, 60, monday, 9, 17, false)
			So(ok, ShouldBeTrue)
			So(slot, ShouldResemble, at(monday, 16, 0))
		})
	})
}
