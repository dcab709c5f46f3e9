package config_test

import (
	"os"
	"strings"
	"testing"

	"github.com/quietweek/quietweek/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given a clean environment", t, func() {
		for _, kv := range os.Environ() {
			if strings.HasPrefix(kv, "QUIETWEEK_") {
				os.Unsetenv(strings.SplitN(kv, "=", 2)[0])
			}
		}

		Convey("When loading with no overrides", func() {
			cfg, err := config.Load()

			Convey("Then the defaults should apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8080")
				So(cfg.DailyBudget, ShouldEqual, 20)
				So(cfg.WorkStartHour, ShouldEqual, 9)
				So(cfg.WorkEndHour, ShouldEqual, 17)
				So(cfg.ExtendedEndHour, ShouldEqual, 19)
				So(cfg.VitalsAggregation, ShouldEqual, "median")
				So(cfg.LogLevel, ShouldEqual, "info")
			})
		})

		Convey("When env vars override fields", func() {
			os.Setenv("QUIETWEEK_ADDR", ":9999")
			os.Setenv("QUIETWEEK_DAILY_BUDGET", "25")
			os.Setenv("QUIETWEEK_LOG_LEVEL", "debug")
			Reset(func() {
				os.Unsetenv("QUIETWEEK_ADDR")
				os.Unsetenv("QUIETWEEK_DAILY_BUDGET")
				os.Unsetenv("QUIETWEEK_LOG_LEVEL")
			})

			cfg, err := config.Load()

			Convey("Then the overrides should win over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9999")
				So(cfg.DailyBudget, ShouldEqual, 25)
				So(cfg.LogLevel, ShouldEqual, "debug")
				So(cfg.WorkStartHour, ShouldEqual, 9)
			})
		})

		Convey("When a YAML file provides settings", func() {
			f, err := os.CreateTemp(t.TempDir(), "quietweek-*.yaml")
			So(err, ShouldBeNil)
			_, err = f.WriteString("daily_budget: 30\nsync_schedule: \"*/15 * * * *\"\nics_sources:\n  - https://example.com/team.ics\n")
			So(err, ShouldBeNil)
			So(f.Close(), ShouldBeNil)

			os.Setenv("QUIETWEEK_CONFIG", f.Name())
			Reset(func() { os.Unsetenv("QUIETWEEK_CONFIG") })

			cfg, err := config.Load()

			Convey("Then the file values should layer over defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.DailyBudget, ShouldEqual, 30)
				So(cfg.SyncSchedule, ShouldEqual, "*/15 * * * *")
				So(cfg.ICSSources, ShouldResemble, []string{"https://example.com/team.ics"})
			})

			Convey("And env should still beat the file", func() {
				os.Setenv("QUIETWEEK_DAILY_BUDGET", "12")
				Reset(func() { os.Unsetenv("QUIETWEEK_DAILY_BUDGET") })

				cfg, err := config.Load()
				So(err, ShouldBeNil)
				So(cfg.DailyBudget, ShouldEqual, 12)
			})
		})

		Convey("When validation fails", func() {
			os.Setenv("QUIETWEEK_DAILY_BUDGET", "0")
			Reset(func() { os.Unsetenv("QUIETWEEK_DAILY_BUDGET") })

			_, err := config.Load()

			Convey("Then the sentinel should be recognizable", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "daily_budget")
			})
		})

		Convey("When the aggregation method is unknown", func() {
			os.Setenv("QUIETWEEK_VITALS_AGGREGATION", "mode")
			Reset(func() { os.Unsetenv("QUIETWEEK_VITALS_AGGREGATION") })

			_, err := config.Load()

			Convey("Then loading should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
