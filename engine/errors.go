package engine

import "errors"

var (
	// ErrInvalidInterval rejects sessions and patches whose end does not
	// come strictly after their start.
	ErrInvalidInterval = errors.New("session end must come after its start")

	// ErrInvalidSessionType rejects session types outside
	// work/break/cigarette.
	ErrInvalidSessionType = errors.New("unknown session type")

	// ErrSessionNotFound is returned by update and delete operations
	// when no session carries the given id.
	ErrSessionNotFound = errors.New("session not found")
)
