package entity

import "errors"

var (
	ErrNoGoalSet             = errors.New("no goal set")
	ErrInvalidGoal           = errors.New("invalid goal")
	ErrPerceptionUnavailable = errors.New("perception unavailable")
	ErrActuationFailure      = errors.New("actuation failure")
	ErrElementNotFound       = errors.New("element not found")
	ErrAgentClosed           = errors.New("agent closed")
)
