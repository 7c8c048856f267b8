package insight

import (
	"errors"
	"fmt"
)

// Sentinel errors for insight providers.
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrUnknownProvider  = errors.New("unknown insight provider")
	ErrNotFitted        = errors.New("model has not been fitted")
)

// InsufficientDataError reports that a provider's minimum-row or
// class-diversity threshold was not met. It is a warning for the section
// that raised it, never for the whole dashboard.
type InsufficientDataError struct {
	Provider string
	Reason   string
	Need     int
	Have     int
}

func (e *InsufficientDataError) Error() string {
	if e.Need > 0 {
		return fmt.Sprintf("%s: %s (need %d, have %d)", e.Provider, e.Reason, e.Need, e.Have)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}

// Unwrap returns ErrInsufficientData.
func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

func insufficient(provider, reason string, need, have int) *InsufficientDataError {
	return &InsufficientDataError{Provider: provider, Reason: reason, Need: need, Have: have}
}
