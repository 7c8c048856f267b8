package aggregate

import (
	"errors"
	"fmt"
)

// Sentinel errors for aggregation.
var (
	ErrUnknownDimension = errors.New("unknown breakdown dimension")
	ErrUnavailable      = errors.New("source column not present in upload")
	ErrTooFewQuarters   = errors.New("select at least two quarters to compare")
	ErrInvalidQuarter   = errors.New("quarter must be between 1 and 4")
	ErrInvalidTopN      = errors.New("top must be one of 5, 10, 20 or all")
	ErrEmptyResult      = errors.New("no rows match the current selection")
)

// EmptyResultWarning is an informational notice that a section has nothing
// to show. It satisfies error so callers may pass it along error paths, but
// it never blocks other sections.
type EmptyResultWarning struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

func (w *EmptyResultWarning) Error() string {
	return fmt.Sprintf("%s: %s", w.Section, w.Message)
}

// Unwrap returns ErrEmptyResult.
func (w *EmptyResultWarning) Unwrap() error { return ErrEmptyResult }

func emptyWarning(section, msg string) *EmptyResultWarning {
	return &EmptyResultWarning{Section: section, Message: msg}
}
