package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/quietweek/quietweek/internal/adapters/repository"
	"github.com/quietweek/quietweek/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func event(id, title string, start time.Time, minutes int) *model.Event {
	return &model.Event{
		ID:              id,
		Title:           title,
		Start:           start,
		End:             start.Add(time.Duration(minutes) * time.Minute),
		DurationMinutes: minutes,
		Category:        model.CategoryMeeting,
	}
}

func TestMemStore(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	Convey("Given an empty store", t, func() {
		So(func() { repository.NewMemStore() }, ShouldNotPanic)
		store := repository.NewMemStore(repository.WithTrackedGauge(false))

		Convey("Then it should list nothing", func() {
			So(store.List(ctx), ShouldBeEmpty)
			So(store.Count(ctx), ShouldEqual, 0)
		})

		Convey("When adding events", func() {
			later := event("b", "standup", day.Add(2*time.Hour), 15)
			earlier := event("a", "review", day, 60)
			So(store.Add(ctx, later), ShouldBeNil)
			So(store.Add(ctx, earlier), ShouldBeNil)

			Convey("Then list should come back in start order", func() {
				listed := store.List(ctx)
				So(len(listed), ShouldEqual, 2)
				So(listed[0].ID, ShouldEqual, "a")
				So(listed[1].ID, ShouldEqual, "b")
			})

			Convey("Then get should find them by id", func() {
				got, err := store.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "review")
			})

			Convey("Then a duplicate id should be rejected", func() {
				So(store.Add(ctx, event("a", "dup", day, 30)), ShouldEqual, repository.ErrDuplicateID)
			})

			Convey("Then remove should delete and miss cleanly", func() {
				So(store.Remove(ctx, "a"), ShouldBeNil)
				So(store.Count(ctx), ShouldEqual, 1)
				So(store.Remove(ctx, "a"), ShouldEqual, repository.ErrNotFound)
			})
		})

		Convey("When adding an event without an id", func() {
			e := event("", "untitled slot", day, 30)
			So(store.Add(ctx, e), ShouldBeNil)

			Convey("Then an id should be assigned", func() {
				So(e.ID, ShouldNotBeEmpty)
				_, err := store.Get(ctx, e.ID)
				So(err, ShouldBeNil)
			})
		})

		Convey("When updating an unknown event", func() {
			Convey("Then it should report not found", func() {
				So(store.Update(ctx, event("ghost", "x", day, 30)), ShouldEqual, repository.ErrNotFound)
			})
		})
	})

	Convey("Given a store with a synced event", t, func() {
		store := repository.NewMemStore(repository.WithTrackedGauge(false))
		local := event("local-1", "planning", day, 60)
		local.RemoteID = "remote-1"
		local.Category = model.CategoryDeepWork
		local.Flexible = model.Ref(false)
		So(store.Add(ctx, local), ShouldBeNil)

		Convey("When merging a remote refresh and a new remote event", func() {
			refreshed := event("", "planning (moved)", day.Add(time.Hour), 60)
			refreshed.RemoteID = "remote-1"
			fresh := event("", "offsite", day.Add(3*time.Hour), 90)
			fresh.RemoteID = "remote-2"

			added, updated, removed := store.MergeRemote(ctx, []*model.Event{refreshed, fresh}, true)

			Convey("Then counts should split adds from updates", func() {
				So(added, ShouldEqual, 1)
				So(updated, ShouldEqual, 1)
				So(removed, ShouldEqual, 0)
				So(store.Count(ctx), ShouldEqual, 2)
			})

			Convey("Then the known event should keep its local enrichments", func() {
				got, err := store.Get(ctx, "local-1")
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "planning (moved)")
				So(got.Start, ShouldResemble, day.Add(time.Hour))
				So(got.Category, ShouldEqual, model.CategoryDeepWork)
				So(*got.Flexible, ShouldBeFalse)
			})
		})

		Convey("When merging events without a remote id", func() {
			added, updated, removed := store.MergeRemote(ctx, []*model.Event{event("", "manual", day, 30)}, false)

			Convey("Then they should be ignored", func() {
				So(added, ShouldEqual, 0)
				So(updated, ShouldEqual, 0)
				So(removed, ShouldEqual, 0)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})

		Convey("When a later pass no longer carries the remote event", func() {
			manual := event("manual-1", "1:1 prep", day.Add(5*time.Hour), 30)
			So(store.Add(ctx, manual), ShouldBeNil)

			fresh := event("", "offsite", day.Add(3*time.Hour), 90)
			fresh.RemoteID = "remote-2"
			added, updated, removed := store.MergeRemote(ctx, []*model.Event{fresh}, true)

			Convey("Then the vanished remote event should be dropped", func() {
				So(added, ShouldEqual, 1)
				So(updated, ShouldEqual, 0)
				So(removed, ShouldEqual, 1)
				So(store.Count(ctx), ShouldEqual, 2)
				_, err := store.Get(ctx, "local-1")
				So(err, ShouldEqual, repository.ErrNotFound)
			})

			Convey("Then the locally created event should survive", func() {
				got, err := store.Get(ctx, "manual-1")
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "1:1 prep")
			})
		})

		Convey("When a pass with failed sources skips pruning", func() {
			added, updated, removed := store.MergeRemote(ctx, nil, false)

			Convey("Then nothing should be dropped", func() {
				So(added, ShouldEqual, 0)
				So(updated, ShouldEqual, 0)
				So(removed, ShouldEqual, 0)
				So(store.Count(ctx), ShouldEqual, 1)
			})
		})
	})
}
