package updraft

import "errors"

// Configuration errors
var (
	ErrMissingToken   = errors.New("updraft: bot token is required")
	ErrMissingHandler = errors.New("updraft: update handler is required")
	ErrInvalidLimit   = errors.New("updraft: long-poll limit must be between 1 and 100")
)

// Runtime errors
var (
	ErrAlreadyRunning  = errors.New("updraft: transport is already running")
	ErrContextSealed   = errors.New("updraft: context is sealed, register services before building the dispatcher")
	ErrServiceNotFound = errors.New("updraft: requested service is not registered in context")
)
