package reservation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidationRejected = errors.New("reservation rejected by server-side validation")
	ErrPersistenceFailed  = errors.New("reservation could not be persisted")
	ErrSlotFull           = errors.New("reservation slot is full")
	ErrAlreadySubmitted   = errors.New("reservation already submitted")
)

// RejectedError lists the fields that failed re-validation.
type RejectedError struct {
	Fields []string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationRejected, strings.Join(e.Fields, ", "))
}

func (e *RejectedError) Unwrap() error { return ErrValidationRejected }
