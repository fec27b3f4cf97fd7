package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidRequest = errors.New("invalid request")
	ErrValidation     = errors.New("validation error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal server error")
)

var (
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", ErrInvalidRequest)
	ErrReorderInFlight   = fmt.Errorf("%w: reorder already in flight", ErrConflict)
	ErrUnknownJobType    = fmt.Errorf("%w: unknown job type", ErrValidation)
	ErrLockNotObtained   = fmt.Errorf("%w: lock not obtained", ErrConflict)
)
