package core

import "errors"

// Common errors.
var (
	ErrNotFound          = errors.New("note not found")
	ErrUnauthorized      = errors.New("not authorized")
	ErrNoSession         = errors.New("no active session")
	ErrNoActiveNote      = errors.New("no note is open")
	ErrEmptyImport       = errors.New("imported file has no title and no content")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrBatchTooLarge     = errors.New("too many files in import batch")
)
