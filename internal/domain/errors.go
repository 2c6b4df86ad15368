package domain

import "errors"

var (
	// ErrQueryInFlight is returned when a query is submitted while another one
	// for the same conversation has not completed yet
	ErrQueryInFlight = errors.New("a query is already in flight for this session")

	// ErrAuthentication is returned when the login exchange fails
	ErrAuthentication = errors.New("authentication failed")

	// ErrSessionSwitch is returned when history for the target session cannot be loaded
	ErrSessionSwitch = errors.New("failed to switch session")

	// ErrNoActiveSession is returned when a query is submitted before any
	// session has been created or selected
	ErrNoActiveSession = errors.New("no active session")

	// ErrStaleResponse is returned when a reply arrives for a conversation that
	// is no longer active; the reply is not appended
	ErrStaleResponse = errors.New("response discarded for inactive session")

	// ErrInvalidSession is returned for empty or malformed session identifiers
	ErrInvalidSession = errors.New("invalid session id")
)
