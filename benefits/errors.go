/*
errors.go - Centralized error types for the benefits domain

ERROR CATEGORIES:
  1. Not found - card or benefit missing from its store
  2. Client errors - invalid amounts, windows, anchors
  3. Store errors - wrapped driver failures (not defined here)

USAGE:
  if benefits.IsNotFound(err) {
      // 404
  }
*/
package benefits

import (
	"errors"
	"fmt"

	"github.com/colinjianingxie/walletfreak-sub000/engine"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCardNotFound is returned when a referenced card doesn't exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrBenefitNotFound is returned when a benefit ID is not in the catalog.
	ErrBenefitNotFound = errors.New("benefit not found")

	// ErrBenefitNotOnCard is returned when a card doesn't carry the benefit.
	ErrBenefitNotOnCard = errors.New("benefit not attached to card")

	// ErrDuplicateCard is returned when saving a card whose ID already exists.
	ErrDuplicateCard = errors.New("card already exists")

	// ErrInvalidAmount is returned for zero usage deltas.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidWindow is returned when a window key can't belong to the benefit.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrInvalidCard is returned when a card is missing required fields.
	ErrInvalidCard = errors.New("invalid card")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// WindowError explains why a window key was rejected for a benefit.
type WindowError struct {
	BenefitID BenefitID
	Key       engine.Key
	Frequency engine.Frequency
	Err       error
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("window %q is not valid for benefit %s (%s): %v", e.Key, e.BenefitID, e.Frequency, e.Err)
}

func (e *WindowError) Unwrap() []error { return []error{ErrInvalidWindow, e.Err} }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCardNotFound) ||
		errors.Is(err, ErrBenefitNotFound) ||
		errors.Is(err, ErrBenefitNotOnCard)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidWindow) ||
		errors.Is(err, ErrInvalidCard) ||
		errors.Is(err, ErrDuplicateCard) ||
		errors.Is(err, engine.ErrInvalidAnchor) ||
		errors.Is(err, engine.ErrInvalidKey)
}
