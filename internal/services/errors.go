package services

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrTripNotFound      = errors.New("trip not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrSeatNotFound      = errors.New("seat not found")
	ErrSegmentNotFound   = errors.New("route segment not found")
	ErrInvalidTransition = errors.New("booking is not in a state that allows this operation")
	ErrHoldExpired       = errors.New("booking hold has expired")
)

// ErrorKind classifies a booking failure for the caller
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindNotFound   ErrorKind = "not_found"
	KindSystem     ErrorKind = "system"
)

// BookingError is an expected failure of the booking workflow. Message is
// safe to show to the end user.
type BookingError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *BookingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BookingError) Unwrap() error {
	return e.Err
}

func validationError(format string, args ...interface{}) *BookingError {
	return &BookingError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func conflictError(format string, args ...interface{}) *BookingError {
	return &BookingError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func notFoundError(err error, message string) *BookingError {
	return &BookingError{Kind: KindNotFound, Message: message, Err: err}
}

// KindOf returns the kind of a booking failure, or KindSystem for any error
// that is not an expected failure.
func KindOf(err error) ErrorKind {
	var bookingErr *BookingError
	if errors.As(err, &bookingErr) {
		return bookingErr.Kind
	}
	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, ErrTripNotFound),
		errors.Is(err, ErrTicketNotFound), errors.Is(err, ErrSeatNotFound), errors.Is(err, ErrSegmentNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrHoldExpired):
		return KindConflict
	}
	return KindSystem
}
