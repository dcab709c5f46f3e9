package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrProposalNotFound means the proposal id was never issued.
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrProposalStale means the schedule changed after the proposal
	// was generated; the caller should re-optimize.
	ErrProposalStale = errors.New("proposal is stale")

	// ErrQueueFull means the reading queue is shedding load.
	ErrQueueFull = errors.New("reading queue full")
)
