// Package repository defines the event store interface and errors.
package repository

import "github.com/quietweek/quietweek/pkg/logger"

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithLogger sets the store's logger.
func WithLogger(log logger.Logger) Option {
	return func(s *MemStore) {
		if log != nil {
			s.log = log
		}
	}
}

// WithTrackedGauge toggles updating the tracked-events metric on every
// mutation.
func WithTrackedGauge(enabled bool) Option {
	return func(s *MemStore) {
		s.trackGauge = enabled
	}
}
