package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure, with no infrastructure dependency. Callers match
// them with errors.Is; layers add context with fmt.Errorf("...: %w", err).

var (
	// Identifier errors
	ErrInvalidTaskID  = errors.New("invalid task identifier")
	ErrInvalidAppPath = errors.New("invalid application path")

	// Tracker errors
	ErrTaskNotFound = errors.New("task not found")

	// Report validation errors
	ErrUnknownState = errors.New("unknown task state")
)
