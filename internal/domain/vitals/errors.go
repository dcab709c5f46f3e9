package vitals

import "errors"

var (
	// ErrSessionNotFound is returned when an operation names a session
	// id that is not (or no longer) active. Ended sessions are removed,
	// so late readings and repeated ends both land here.
	ErrSessionNotFound = errors.New("session not found")
)
