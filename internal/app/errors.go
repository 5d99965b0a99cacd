package app

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrPastDate      = errors.New("date is in the past")
	ErrSlotTaken     = errors.New("slot already booked")
)

// ValidationError reports a malformed input field. Handlers surface the
// field name so clients can highlight it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalidField(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
