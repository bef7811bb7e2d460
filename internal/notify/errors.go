package notify

import "errors"

var (
	// ErrNoSession is returned when an operation needs an authenticated
	// session and there is none.
	ErrNoSession = errors.New("no active session")

	// ErrStopped is returned for poll results that arrive after the
	// poller was stopped. They are discarded.
	ErrStopped = errors.New("poller stopped")

	// ErrNoPendingDeleteAll is returned when delete-all is confirmed
	// without having been requested first.
	ErrNoPendingDeleteAll = errors.New("delete all was not requested")
)
