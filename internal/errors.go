package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptState marks persisted data that is missing or fails to parse.
	ErrCorruptState = errors.New("corrupt state")
	// ErrNetworkFailure marks an unreachable backend or a non-2xx response.
	ErrNetworkFailure = errors.New("network failure")
	// ErrValidation marks missing or inconsistent input rejected before any I/O.
	ErrValidation = errors.New("validation failure")
	// ErrSessionNotFound is wrapped by ParseError when a transcript key is absent.
	ErrSessionNotFound = errors.New("session transcript not found")
)

// StorageError represents errors accessing the key-value store
type StorageError struct {
	Key string
	Op  string // "get", "set", "remove"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents persisted data that could not be decoded.
// It always matches ErrCorruptState.
type ParseError struct {
	Source string // "index", "transcript", "history"
	Key    string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrCorruptState
}

// NetworkError represents a failed backend call
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error [%s] %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("network error [%s] %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetworkFailure
}

// ValidationError represents input rejected before any store or network call
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
