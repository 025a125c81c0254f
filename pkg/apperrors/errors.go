// Package apperrors defines the recoverable error taxonomy for the
// prediction engine. Every validation failure a caller can fix is one of
// the sentinel categories below; typed detail errors wrap a sentinel so
// callers can test the category with errors.Is and extract the offending
// columns or values with errors.As. Anything outside the taxonomy is
// ErrInternal and fatal to the single request only.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrContractMismatch    = errors.New("contract mismatch")
	ErrInvalidDataType     = errors.New("invalid data type")
	ErrMissingValues       = errors.New("missing values")
	ErrOutOfRangeValue     = errors.New("value out of range")
	ErrMissingYear         = errors.New("missing year")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrFitFailure          = errors.New("model fit failure")
	ErrInvalidYearsAhead   = errors.New("years_ahead must be between 1 and 4")
	ErrModelNotLoaded      = errors.New("model not loaded")
	ErrInternal            = errors.New("internal error")
)

// ContractMismatchError reports which contract features had no matching
// supplied column and which supplied columns matched no contract feature.
type ContractMismatchError struct {
	MissingFeatures []string
	ExtraFeatures   []string
}

func (e *ContractMismatchError) Error() string {
	return fmt.Sprintf("missing required features: %s", strings.Join(e.MissingFeatures, ", "))
}

func (e *ContractMismatchError) Unwrap() error { return ErrContractMismatch }

// InvalidDataTypeError names the columns holding values that could not be
// parsed as numbers.
type InvalidDataTypeError struct {
	Columns []string
}

func (e *InvalidDataTypeError) Error() string {
	return fmt.Sprintf("non-numeric values in columns: %s", strings.Join(e.Columns, ", "))
}

func (e *InvalidDataTypeError) Unwrap() error { return ErrInvalidDataType }

// MissingValuesError names required columns that contain nulls after
// numeric coercion. No imputation is performed.
type MissingValuesError struct {
	Columns []string
}

func (e *MissingValuesError) Error() string {
	return fmt.Sprintf("missing values in columns: %s", strings.Join(e.Columns, ", "))
}

func (e *MissingValuesError) Unwrap() error { return ErrMissingValues }

// OutOfRangeValueError reports a historical observation outside [0,1].
type OutOfRangeValueError struct {
	Year  int
	Value float64
}

func (e *OutOfRangeValueError) Error() string {
	return fmt.Sprintf("value %g for year %d is outside [0,1]", e.Value, e.Year)
}

func (e *OutOfRangeValueError) Unwrap() error { return ErrOutOfRangeValue }

// MissingYearError reports an absent historical column, named exactly as
// the contract expects it (e.g. NDVI_2022).
type MissingYearError struct {
	Column string
}

func (e *MissingYearError) Error() string {
	return fmt.Sprintf("missing historical column: %s", e.Column)
}

func (e *MissingYearError) Unwrap() error { return ErrMissingYear }

// InsufficientHistoryError reports that fewer than the minimum usable
// historical points were available for fitting.
type InsufficientHistoryError struct {
	Points   int
	Required int
}

func (e *InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history: %d usable points, need at least %d", e.Points, e.Required)
}

func (e *InsufficientHistoryError) Unwrap() error { return ErrInsufficientHistory }

// FitFailureError reports numerical non-convergence while fitting.
type FitFailureError struct {
	Reason string
}

func (e *FitFailureError) Error() string {
	return fmt.Sprintf("model fit failed: %s", e.Reason)
}

func (e *FitFailureError) Unwrap() error { return ErrFitFailure }

// IsValidation reports whether err belongs to the recoverable taxonomy,
// i.e. the caller can fix the input and retry.
func IsValidation(err error) bool {
	for _, sentinel := range []error{
		ErrContractMismatch,
		ErrInvalidDataType,
		ErrMissingValues,
		ErrOutOfRangeValue,
		ErrMissingYear,
		ErrInsufficientHistory,
		ErrFitFailure,
		ErrInvalidYearsAhead,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
