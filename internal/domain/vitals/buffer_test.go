package vitals_test

import (
	"testing"
	"time"

	"github.com/quietweek/quietweek/internal/domain/vitals"
	. "github.com/smartystreets/goconvey/convey"
)

var t0 = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func reading(at time.Time, pulse, breathing float64) vitals.Reading {
	return vitals.Reading{
		SessionID:     "s1",
		Timestamp:     at,
		PulseRate:     pulse,
		BreathingRate: breathing,
	}
}

func TestBuffer(t *testing.T) {
	Convey("Given an empty buffer", t, func() {
		b := vitals.NewBuffer(5*time.Second, 2)

		Convey("Then it should report calibrating with no aggregates", func() {
			So(b.Calibrating(), ShouldBeTrue)
			So(b.Stable(), ShouldBeFalse)
			_, ok := b.Aggregate()
			So(ok, ShouldBeFalse)
		})

		Convey("When one reading arrives", func() {
			b.Add(reading(t0, 70, 14))

			Convey("Then aggregates exist but are not yet stable", func() {
				So(b.Calibrating(), ShouldBeFalse)
				So(b.Stable(), ShouldBeFalse)
				agg, ok := b.Aggregate()
				So(ok, ShouldBeTrue)
				So(agg.PulseRate, ShouldEqual, 70)
				So(agg.Stable, ShouldBeFalse)
			})
		})

		Convey("When enough readings arrive", func() {
			b.Add(reading(t0, 70, 14))
			b.Add(reading(t0.Add(time.Second), 74, 16))

			Convey("Then the buffer should be stable and average the window", func() {
				So(b.Stable(), ShouldBeTrue)
				agg, ok := b.Aggregate()
				So(ok, ShouldBeTrue)
				So(agg.PulseRate, ShouldEqual, 72)
				So(agg.BreathingRate, ShouldEqual, 15)
				So(agg.ReadingCount, ShouldEqual, 2)
				So(agg.WindowSeconds, ShouldEqual, 1)
				So(agg.Stable, ShouldBeTrue)
			})
		})
	})

	Convey("Given readings spread beyond the window", t, func() {
		b := vitals.NewBuffer(5*time.Second, 2)
		b.Add(reading(t0, 70, 14))
		b.Add(reading(t0.Add(3*time.Second), 72, 14))
		b.Add(reading(t0.Add(10*time.Second), 90, 18))

		Convey("Then old readings should slide off the front", func() {
			So(b.Len(), ShouldEqual, 1)
			agg, ok := b.Aggregate()
			So(ok, ShouldBeTrue)
			So(agg.PulseRate, ShouldEqual, 90)
		})
	})

	Convey("Given readings with sensor dropouts", t, func() {
		b := vitals.NewBuffer(5*time.Second, 2)
		b.Add(reading(t0, 0, 0))
		b.Add(reading(t0.Add(time.Second), 80, 16))

		Convey("Then zero samples should not drag the averages down", func() {
			agg, ok := b.Aggregate()
			So(ok, ShouldBeTrue)
			So(agg.PulseRate, ShouldEqual, 80)
			So(agg.BreathingRate, ShouldEqual, 16)
		})
	})

	Convey("Given a cleared buffer", t, func() {
		b := vitals.NewBuffer(5*time.Second, 2)
		b.Add(reading(t0, 70, 14))
		b.Clear()

		Convey("Then it should be calibrating again", func() {
			So(b.Calibrating(), ShouldBeTrue)
		})
	})
}

func TestComputeLoad(t *testing.T) {
	Convey("Given calm resting vitals", t, func() {
		load := vitals.ComputeLoad(vitals.Aggregated{
			PulseRate:     70,
			BreathingRate: 14,
			HRV:           50,
		})

		Convey("Then focus should be high, stress and delta low", func() {
			So(load.FocusScore, ShouldEqual, 90)
			So(load.Stress, ShouldEqual, 10)
			So(load.CostDelta, ShouldAlmostEqual, 0.6, 0.0001)
		})
	})

	Convey("Given elevated stressed vitals", t, func() {
		load := vitals.ComputeLoad(vitals.Aggregated{
			PulseRate:     105,
			BreathingRate: 22,
			HRV:           30,
		})

		Convey("Then the critical thresholds should pile on stress", func() {
			So(load.FocusScore, ShouldEqual, 59)
			So(load.Stress, ShouldEqual, 57)
			So(load.CostDelta, ShouldAlmostEqual, 3.42, 0.0001)
		})
	})

	Convey("Given extreme vitals", t, func() {
		load := vitals.ComputeLoad(vitals.Aggregated{
			PulseRate:     160,
			BreathingRate: 35,
			HRV:           20,
		})

		Convey("Then stress should clamp at 100 and delta at the cap", func() {
			So(load.Stress, ShouldEqual, 100)
			So(load.CostDelta, ShouldEqual, vitals.MaxCostDelta)
		})
	})
}
