package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/quietweek/quietweek/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerDefault(t *testing.T) {
	Convey("Given a process that never called Init", t, func() {
		Convey("When fetching the global logger", func() {
			l := logger.Get()

			Convey("Then a default logger should be returned", func() {
				So(l, ShouldNotBeNil)
				So(func() {
					l.Info(context.Background(), "default logger")
				}, ShouldNotPanic)
			})
		})

		Convey("When creating a named logger", func() {
			Convey("Then it should not panic", func() {
				So(func() { logger.Named("store") }, ShouldNotPanic)
			})
		})
	})
}

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When fetching the global logger", func() {
			l := logger.Get()

			Convey("Then it should not be nil and should log without panicking", func() {
				So(l, ShouldNotBeNil)
				So(func() {
					l.Info(context.Background(), "hello", logger.String("k", "v"))
					l.Debug(context.Background(), "debug line", logger.Int("n", 1))
					l.Warn(context.Background(), "warn line", logger.Bool("flag", true))
					l.Error(context.Background(), "error line", logger.Error(nil))
				}, ShouldNotPanic)
			})
		})

		Convey("When creating a named logger", func() {
			l := logger.Named("planner")

			Convey("Then it should log without panicking", func() {
				So(func() {
					l.Info(context.Background(), "scoped")
				}, ShouldNotPanic)
			})
		})

		Convey("When setting levels by string", func() {
			Convey("Then known levels should be accepted", func() {
				So(logger.SetLevelString("debug"), ShouldBeNil)
				So(logger.SetLevelString("info"), ShouldBeNil)
				So(logger.SetLevelString("WARN"), ShouldBeNil)
				So(logger.SetLevelString("warning"), ShouldBeNil)
				So(logger.SetLevelString("error"), ShouldBeNil)
				So(logger.SetLevelString(""), ShouldBeNil)
			})

			Convey("Then unknown levels should be rejected", func() {
				So(logger.SetLevelString("loud"), ShouldNotBeNil)
			})
		})

		Convey("When setting an explicit slog level", func() {
			So(func() { logger.SetLevel(slog.LevelDebug) }, ShouldNotPanic)
			logger.SetLevel(slog.LevelInfo)
		})
	})
}
