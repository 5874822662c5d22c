package service

import "errors"

// Common service errors
var (
	// ErrUnauthorized is returned when no authenticated user is present
	ErrUnauthorized = errors.New("unauthorized")

	// ErrPermissionDenied is returned when a user doesn't have permission for an action
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrSnapshotUnavailable is returned when any record collection could not be read
	ErrSnapshotUnavailable = errors.New("report data unavailable")
)
