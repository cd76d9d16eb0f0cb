package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBusy is returned when generate/refine is invoked while another request is in flight.
var ErrBusy = errors.New("a generation request is already in progress")

var ErrItemNotFound = errors.New("wardrobe item not found")

// ValidationError is raised locally, before any external call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// CapabilityFailure is an external capability error or unusable output.
type CapabilityFailure struct {
	Operation string
	Reason    string
	// Refused is set when the capability answered but declined to produce output.
	Refused bool
	Err     error
}

func (e *CapabilityFailure) Error() string {
	if e.Refused {
		return fmt.Sprintf("AI did not return an image. It might have refused the request. Reason: %s", e.Reason)
	}
	if e.Reason != "" {
		return fmt.Sprintf("Failed to %s. Details: %s", e.Operation, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("Failed to %s. Details: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("Failed to %s.", e.Operation)
}

func (e *CapabilityFailure) Unwrap() error {
	return e.Err
}

// NameResolutionFailure means the stylist's selection matched nothing in the wardrobe.
type NameResolutionFailure struct {
	Names []string
}

func (e *NameResolutionFailure) Error() string {
	if len(e.Names) == 0 {
		return "The AI stylist couldn't decide on an outfit: selection could not be matched to wardrobe."
	}
	return fmt.Sprintf("The AI stylist made a selection (%s), but selection could not be matched to wardrobe.", strings.Join(e.Names, ", "))
}

// PersistenceFailure is non-fatal: in-memory state stays authoritative for the session.
type PersistenceFailure struct {
	Operation string
	Err       error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("changes are kept for this session only, %s failed: %v", e.Operation, e.Err)
}

func (e *PersistenceFailure) Unwrap() error {
	return e.Err
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsCapabilityFailure matches CapabilityFailure and its NameResolutionFailure variant.
func IsCapabilityFailure(err error) bool {
	var c *CapabilityFailure
	var n *NameResolutionFailure
	return errors.As(err, &c) || errors.As(err, &n)
}

func IsPersistenceFailure(err error) bool {
	var p *PersistenceFailure
	return errors.As(err, &p)
}
