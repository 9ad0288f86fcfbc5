package types

import "errors"

var (
	ErrNotFound          = errors.New("requested item not found")
	ErrConflict          = errors.New("item already exists or conflict")
	ErrUnauthenticated   = errors.New("authentication required or invalid credentials")
	ErrForbidden         = errors.New("action forbidden")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
)
