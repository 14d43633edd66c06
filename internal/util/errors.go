package util

import "errors"

// Progression errors. Callers wrap them with context via fmt.Errorf("%w: ...")
// and the controller layer maps them to HTTP statuses with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("not authorized to access this resource")
	ErrAlreadyOwned      = errors.New("story already owned")
	ErrAlreadyStarted    = errors.New("story already started")
	ErrInsufficientFunds = errors.New("insufficient gold")
	ErrMalformedContent  = errors.New("malformed story content")
	ErrAmbiguousResult   = errors.New("ambiguous result")
)

// Identity errors.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email or username already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
)
