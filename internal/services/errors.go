package services

import "errors"

// Sentinel errors forming the closed outcome taxonomy of the verification
// protocol. Handlers map these to status codes and wire messages with
// errors.Is; anything not in this list is an infrastructure failure and is
// reported as a server error.
var (
	// ErrMissingFields indicates a request missing one or more required fields.
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidCredentials is the umbrella rejection for "no such email",
	// "wrong password" and mismatched preference factors. They are made
	// indistinguishable on purpose so the login surface cannot be used as an
	// account-enumeration oracle.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidGraphicalPassword indicates a graphical factor failure: the
	// wrong point count at registration, or an unmatched point set at login.
	ErrInvalidGraphicalPassword = errors.New("invalid graphical password")

	// ErrDuplicateEmail indicates a registration against an already
	// registered email address.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrUnauthorized indicates a missing, tampered or expired session token.
	ErrUnauthorized = errors.New("unauthorized")
)
