package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes storage errors.
type ErrorCode string

const (
	// ErrCodeStorageUnavailable indicates the backing log could not be opened,
	// read or written. Fatal for the operation; callers may retry.
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"

	// ErrCodeCorruptRecord indicates a persisted record failed to parse into a
	// well-formed block. Fatal at load: a partially readable ledger is not trusted.
	ErrCodeCorruptRecord ErrorCode = "CORRUPT_RECORD"
)

// Error is a storage failure with enough context to locate it.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the backing log location.
	Path string

	// Line is the 1-based record number for corrupt records, 0 otherwise.
	Line int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" && e.Line > 0 {
		msg = fmt.Sprintf("%s (%s:%d)", msg, e.Path, e.Line)
	} else if e.Path != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsStorageUnavailable returns true if err is (or wraps) a storage-unavailable error.
func IsStorageUnavailable(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeStorageUnavailable
	}
	return false
}

// IsCorruptRecord returns true if err is (or wraps) a corrupt-record error.
func IsCorruptRecord(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeCorruptRecord
	}
	return false
}

func newStorageError(path, message string, err error) *Error {
	return &Error{Code: ErrCodeStorageUnavailable, Message: message, Path: path, Err: err}
}

func newCorruptError(path string, line int, message string, err error) *Error {
	return &Error{Code: ErrCodeCorruptRecord, Message: message, Path: path, Line: line, Err: err}
}
