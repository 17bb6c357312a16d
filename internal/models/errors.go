package models

import (
	"errors"
	"fmt"
)

// ValidationError indicates malformed or logically inconsistent input.
// The caller can recover by correcting the request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError indicates a referenced resource does not exist.
type NotFoundError struct {
	Resource string
	ID       int
}

func (e *NotFoundError) Error() string {
	if e.ID > 0 {
		return fmt.Sprintf("%s with id %d not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// AuthorizationError indicates the caller lacks permission for the
// requested read or write.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string {
	if e.Message == "" {
		return "insufficient permissions"
	}
	return e.Message
}

// CapacityError indicates event or ticket capacity would be exceeded,
// including the inventory re-check inside the registration transaction.
// It is a variant of ValidationError: errors.As with a **ValidationError
// target matches it.
type CapacityError struct {
	Message string
}

func (e *CapacityError) Error() string {
	return e.Message
}

// As lets a CapacityError satisfy errors.As for *ValidationError targets.
func (e *CapacityError) As(target interface{}) bool {
	if v, ok := target.(**ValidationError); ok {
		*v = &ValidationError{Message: e.Message}
		return true
	}
	return false
}

// IsValidationError reports whether err is a validation failure,
// including the capacity variant.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsCapacityError reports whether err is specifically a capacity failure.
func IsCapacityError(err error) bool {
	var ce *CapacityError
	return errors.As(err, &ce)
}

// IsNotFoundError reports whether err is a missing-resource failure.
func IsNotFoundError(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// IsAuthorizationError reports whether err is a permission failure.
func IsAuthorizationError(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}
