// Package settlement holds the sale settlement model: currency arithmetic,
// derived sale totals, return eligibility, and return payload building. All
// functions are pure and synchronous; callers own persistence and transport.
package settlement

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the referenced sale or line item is absent.
	ErrNotFound = errors.New("sale not found")

	// ErrDivisionByZero is returned by Calc for a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidPrecision is returned by Calc for a negative precision.
	ErrInvalidPrecision = errors.New("precision must not be negative")

	// ErrUnknownOp is returned by Calc for an unrecognised operation.
	ErrUnknownOp = errors.New("unknown arithmetic operation")

	// ErrNothingToReturn is returned when no line has a positive return quantity.
	ErrNothingToReturn = errors.New("nothing selected to return")

	// ErrOverReturn is returned when a return quantity exceeds what is still returnable.
	ErrOverReturn = errors.New("return quantity exceeds returnable quantity")

	// ErrUnknownLineItem is returned when a selection references a line the sale does not have.
	ErrUnknownLineItem = errors.New("line item does not belong to sale")

	// ErrInvalidCreditAction is returned for a credit action outside the accepted set.
	ErrInvalidCreditAction = errors.New("invalid credit action")
)

// ValidationError wraps a sentinel error with context about the failing input.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
