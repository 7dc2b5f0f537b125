package board

import "errors"

var (
	// ErrValidation is returned when a required field is empty or a value is out of range
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when a task is not in the column an operation names
	ErrNotFound = errors.New("task not found")
	// ErrImport is returned for payloads that are not a board
	ErrImport = errors.New("invalid board import")
)
