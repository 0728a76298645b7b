package auth

import "errors"

// Error taxonomy of the auth service. Handlers map these to HTTP statuses;
// everything not in the taxonomy is an internal fault.
var (
	// ErrValidation: missing or malformed input, caller's fault.
	ErrValidation = errors.New("invalid input")

	// ErrAlreadyExists: an account with this email exists.
	ErrAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	// The message stays generic to resist account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound: the entity was absent where presence was assumed.
	ErrNotFound = errors.New("user not found")

	// ErrStoreUnavailable: backend or network fault, not the caller's fault.
	ErrStoreUnavailable = errors.New("store unavailable")
)
