// Package seedevents implements the demo seeding tool: it populates a
// running service with a realistic week of events over HTTP, classifies
// them, runs the optimizer and reports the outcome.
package seedevents

import (
	"time"
)

// Config holds seeding tool configuration.
type Config struct {
	BaseURL string
	Workers int
	Timeout time.Duration
	Apply   bool
	LogFile string
	Verbose bool
}

// Stats tracks seeding statistics.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time

	Generated  int
	Submitted  int64
	Failed     int64
	Classified int
	Applied    int
}

// Duration returns the total run duration.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}
