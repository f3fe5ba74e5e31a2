package core

import "errors"

// Error kinds surfaced by the engine. Callers test with errors.Is; every
// returned error wraps exactly one of these (store failures wrap ErrStorage).
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidState    = errors.New("invalid state")
	ErrConflict        = errors.New("conflict")
	ErrAlreadyReceived = errors.New("already received")
	ErrStorage         = errors.New("storage error")
)
