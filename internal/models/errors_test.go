package models

import (
	"errors"
	"fmt"
	"testing"
)

func TestCapacityErrorIsValidationVariant(t *testing.T) {
	var err error = &CapacityError{Message: "sold out"}

	if !IsCapacityError(err) {
		t.Error("IsCapacityError() = false, want true")
	}
	if !IsValidationError(err) {
		t.Error("IsValidationError() = false for a capacity error, want true")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("errors.As failed to match *ValidationError")
	}
	if ve.Message != "sold out" {
		t.Errorf("matched validation error message = %q, want %q", ve.Message, "sold out")
	}
}

func TestErrorClassifiersThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("create failed: %w", &NotFoundError{Resource: "event", ID: 7})

	if !IsNotFoundError(wrapped) {
		t.Error("IsNotFoundError() = false for wrapped error, want true")
	}
	if IsValidationError(wrapped) {
		t.Error("IsValidationError() = true for a not-found error, want false")
	}
	if IsAuthorizationError(wrapped) {
		t.Error("IsAuthorizationError() = true for a not-found error, want false")
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	withID := &NotFoundError{Resource: "registration", ID: 12}
	if withID.Error() != "registration with id 12 not found" {
		t.Errorf("Error() = %q", withID.Error())
	}

	withoutID := &NotFoundError{Resource: "participant"}
	if withoutID.Error() != "participant not found" {
		t.Errorf("Error() = %q", withoutID.Error())
	}
}
