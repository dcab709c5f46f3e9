package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/quietweek/quietweek/internal/adapters/mq/queue"
	"github.com/quietweek/quietweek/internal/adapters/mq/worker"
	"github.com/quietweek/quietweek/internal/domain/vitals"
	. "github.com/smartystreets/goconvey/convey"
)

func waitForReadings(tracker *vitals.Tracker, sessionID string, want int) bool {
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			return false
		default:
			s, err := tracker.Get(sessionID)
			if err == nil && s.ReadingCount >= want {
				return true
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func TestWorkerPipeline(t *testing.T) {
	ctx := context.Background()

	Convey("Given a worker pool draining a queue into a tracker", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		tracker := vitals.NewTracker()
		pool := worker.NewPool(2, q, tracker)

		runCtx, cancel := context.WithCancel(ctx)
		pool.Start(runCtx)

		Reset(func() {
			cancel()
			_ = q.Close()
		})

		Convey("When readings for an active session are enqueued", func() {
			session := tracker.Start("ev-1", 5)
			base := time.Now()
			for i := 0; i < 4; i++ {
				ok := q.Enqueue(ctx, vitals.Reading{
					SessionID:     session.ID,
					Timestamp:     base.Add(time.Duration(i) * time.Second),
					PulseRate:     70,
					BreathingRate: 14,
				})
				So(ok, ShouldBeTrue)
			}

			Convey("Then the session should accumulate them", func() {
				So(waitForReadings(tracker, session.ID, 4), ShouldBeTrue)
				got, err := tracker.Get(session.ID)
				So(err, ShouldBeNil)
				So(got.ReadingCount, ShouldEqual, 4)
				So(got.LastLoad, ShouldNotBeNil)
			})
		})

		Convey("When readings reference a session that no longer exists", func() {
			probe := tracker.Start("ev-2", 3)
			So(q.Enqueue(ctx, vitals.Reading{SessionID: "ghost", Timestamp: time.Now(), PulseRate: 70}), ShouldBeTrue)
			So(q.Enqueue(ctx, vitals.Reading{SessionID: probe.ID, Timestamp: time.Now(), PulseRate: 70}), ShouldBeTrue)

			Convey("Then they should be dropped without stalling the pipeline", func() {
				So(waitForReadings(tracker, probe.ID, 1), ShouldBeTrue)
			})
		})

		Convey("When the pool shuts down", func() {
			Convey("Then shutdown should return promptly", func() {
				So(pool.Size(), ShouldEqual, 2)
				So(pool.Shutdown(ctx), ShouldBeNil)
			})
		})
	})
}
