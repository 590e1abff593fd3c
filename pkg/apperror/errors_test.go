package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("complete bill: %w", NewConflictError("Bill is already completed"))

	if !errors.Is(err, ErrStateConflict) {
		t.Fatalf("expected wrapped conflict to match ErrStateConflict")
	}
	if errors.Is(err, ErrStaleState) {
		t.Fatalf("conflict must not match stale state")
	}
	if KindOf(err) != KindStateConflict {
		t.Fatalf("expected kind %s, got %s", KindStateConflict, KindOf(err))
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{ErrAmountMismatch, true},
		{NewFieldError("payments", "is required"), true},
		{ErrStaleState, true},
		{NewNotFoundError("Bill"), false},
		{NewConflictError("Bill is cancelled"), false},
		{errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Fatalf("IsRetryable(%v) expected %v, got %v", tc.err, tc.want, got)
		}
	}
}

func TestFromBindingError(t *testing.T) {
	type payload struct {
		BankName string `validate:"required"`
		Count    int    `validate:"min=1"`
	}
	err := validator.New().Struct(payload{})
	appErr := FromBindingError(err)

	if appErr.Code != http.StatusUnprocessableEntity || appErr.Kind != KindValidation {
		t.Fatalf("unexpected error %+v", appErr)
	}
	if len(appErr.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(appErr.Errors))
	}
	if appErr.Errors[0].Field != "bank_name" || appErr.Errors[0].Message != "is required" {
		t.Fatalf("unexpected first field error %+v", appErr.Errors[0])
	}
}

func TestGetAppErrorWrapsForeignErrors(t *testing.T) {
	appErr := GetAppError(errors.New("connection reset"))
	if appErr.Code != http.StatusInternalServerError || appErr.Kind != KindInternal {
		t.Fatalf("unexpected %+v", appErr)
	}
}
