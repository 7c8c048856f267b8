package ingest

import (
	"errors"
	"fmt"
)

// Sentinel errors for ingestion.
var (
	ErrLoad            = errors.New("load error")
	ErrFileTooLarge    = errors.New("file exceeds upload size limit")
	ErrUnknownFormat   = errors.New("unsupported file format")
	ErrMissingColumns  = errors.New("missing required columns")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8 or UTF-16 text")
	ErrInvalidCount    = errors.New("count must be a non-negative whole number")
	ErrNoHeader        = errors.New("file has no header row")
)

// LoadError reports why an upload could not be turned into a table. Row is
// the 1-based physical row (the header is row 1) or 0 when the failure is not
// tied to a row.
type LoadError struct {
	Op     string
	Row    int
	Column string
	Cause  error
}

func (e *LoadError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("load %s: row %d, column %q: %v", e.Op, e.Row, e.Column, e.Cause)
	case e.Row > 0:
		return fmt.Sprintf("load %s: row %d: %v", e.Op, e.Row, e.Cause)
	default:
		return fmt.Sprintf("load %s: %v", e.Op, e.Cause)
	}
}

// Unwrap exposes both ErrLoad and the underlying cause to errors.Is.
func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Cause}
}

func loadErr(op string, cause error) *LoadError {
	return &LoadError{Op: op, Cause: cause}
}
