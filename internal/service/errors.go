package service

import "errors"

// Sentinel errors the handlers translate into HTTP statuses. Anything
// not matching one of these is treated as an internal error.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// DeniedError carries the authorization engine's human-readable reason
// for refusing an approve/reject attempt.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return e.Reason
}

// Denied builds a DeniedError with the given reason.
func Denied(reason string) error {
	return &DeniedError{Reason: reason}
}
