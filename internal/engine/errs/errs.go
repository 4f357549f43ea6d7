package errs

import (
	"errors"
	"fmt"
)

// Error kinds for the access-control core. Services wrap these with
// fmt.Errorf("%w: ...") and callers match with errors.Is; the router maps
// each kind to its response code.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrAuthorization = errors.New("authorization denied")
	ErrConflict      = errors.New("conflict")
	ErrState         = errors.New("invalid state")
	ErrDelivery      = errors.New("delivery failed")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Authorizationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

func Conflictf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func Statef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrState, fmt.Sprintf(format, args...))
}

func Deliveryf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDelivery, fmt.Sprintf(format, args...))
}
