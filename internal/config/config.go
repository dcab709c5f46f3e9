// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "runtime"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DailyBudget is the cognitive point budget per day.
	DailyBudget int `koanf:"daily_budget"`

	// WorkStartHour and WorkEndHour bound the normal scheduling
	// window; ExtendedEndHour is how late the optimizer may reach when
	// the normal window is full.
	WorkStartHour   int `koanf:"work_start_hour"`
	WorkEndHour     int `koanf:"work_end_hour"`
	ExtendedEndHour int `koanf:"extended_end_hour"`

	// ReadingQueueSize bounds the in-memory vital-sign reading queue.
	ReadingQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of reading workers.
	WorkerCount int `koanf:"worker_count"`

	// SyncSchedule is a cron expression for periodic calendar sync.
	// Empty disables the schedule; sync can still be triggered over
	// HTTP.
	SyncSchedule string `koanf:"sync_schedule"`

	// ICSSources lists ICS feed URLs to sync from. With none
	// configured the built-in mock feed is used.
	ICSSources []string `koanf:"ics_sources"`

	// VitalsWindowSeconds sizes the sliding window smoothing session
	// readings; VitalsMinStable is how many readings make it reliable.
	VitalsWindowSeconds int `koanf:"vitals_window_seconds"`
	VitalsMinStable     int `koanf:"vitals_min_stable"`

	// VitalsAggregation collapses a session's deltas: mean, median or
	// p90.
	VitalsAggregation string `koanf:"vitals_aggregation"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8080",
		DailyBudget:         20,
		WorkStartHour:       9,
		WorkEndHour:         17,
		ExtendedEndHour:     19,
		ReadingQueueSize:    4096,
		WorkerCount:         runtime.NumCPU(),
		SyncSchedule:        "",
		VitalsWindowSeconds: 5,
		VitalsMinStable:     2,
		VitalsAggregation:   "median",
	}
}
