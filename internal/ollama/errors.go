// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// RunError represents a failure while invoking the ollama executable.
// The Runner never returns it; it is attached to Response.Err as advisory
// information for display.
type RunError struct {
	Type     ErrorType
	Message  string
	ExitCode int
	Cause    error
}

func (e *RunError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RunError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes run errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotFound
	ErrTypeStart
	ErrTypeIO
	ErrTypeExit
	ErrTypeCanceled
	ErrTypePanic
	ErrTypeNotRunning
	ErrTypeInvalidResponse
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeNotFound:
		return "not_found"
	case ErrTypeStart:
		return "start"
	case ErrTypeIO:
		return "io"
	case ErrTypeExit:
		return "exit"
	case ErrTypeCanceled:
		return "canceled"
	case ErrTypePanic:
		return "panic"
	case ErrTypeNotRunning:
		return "not_running"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// IsNotFound returns true if the executable could not be located.
func IsNotFound(err error) bool {
	return hasType(err, ErrTypeNotFound)
}

// IsExit returns true if the process ran but exited with a non-zero status.
func IsExit(err error) bool {
	return hasType(err, ErrTypeExit)
}

// IsNotRunning returns true if the ollama server did not answer.
func IsNotRunning(err error) bool {
	return hasType(err, ErrTypeNotRunning)
}

func hasType(err error, t ErrorType) bool {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Type == t
	}
	return false
}

func notFoundError(binary string, cause error) *RunError {
	return &RunError{
		Type:    ErrTypeNotFound,
		Message: fmt.Sprintf("%s not found in PATH or common installation directories", binary),
		Cause:   cause,
	}
}
