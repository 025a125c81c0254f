package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestDetailErrorsUnwrapToSentinels(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
	}{
		{&ContractMismatchError{MissingFeatures: []string{"NDVI"}}, ErrContractMismatch},
		{&InvalidDataTypeError{Columns: []string{"EVI"}}, ErrInvalidDataType},
		{&MissingValuesError{Columns: []string{"EVI"}}, ErrMissingValues},
		{&OutOfRangeValueError{Year: 2021, Value: 1.5}, ErrOutOfRangeValue},
		{&MissingYearError{Column: "NDVI_2022"}, ErrMissingYear},
		{&InsufficientHistoryError{Points: 2, Required: 3}, ErrInsufficientHistory},
		{&FitFailureError{Reason: "zero innovation variance"}, ErrFitFailure},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.sentinel) {
			t.Errorf("%T does not unwrap to its sentinel", tt.err)
		}
		if !IsValidation(tt.err) {
			t.Errorf("%T should count as a validation error", tt.err)
		}
	}
}

func TestIsValidation_ExcludesInternal(t *testing.T) {
	if IsValidation(ErrInternal) {
		t.Error("ErrInternal is not a validation error")
	}
	if IsValidation(fmt.Errorf("wrapped: %w", ErrModelNotLoaded)) {
		t.Error("a missing model is not fixable input")
	}
	if !IsValidation(fmt.Errorf("wrapped: %w", ErrInvalidYearsAhead)) {
		t.Error("wrapped validation sentinel must still count")
	}
}

func TestErrorMessagesNameTheOffender(t *testing.T) {
	err := &OutOfRangeValueError{Year: 2021, Value: 1.5}
	want := "value 1.5 for year 2021 is outside [0,1]"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}

	my := &MissingYearError{Column: "NDVI_2022"}
	if my.Error() != "missing historical column: NDVI_2022" {
		t.Errorf("unexpected message: %q", my.Error())
	}
}
