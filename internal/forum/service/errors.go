package service

import "errors"

// Sentinel errors shared across the services. Handlers map these onto HTTP
// statuses; the wire messages match the error text.
var (
	// ErrUnauthorized is the generic credential failure. It deliberately
	// carries no detail about what went wrong.
	ErrUnauthorized = errors.New("could not validate credentials")

	// ErrBadCredentials is returned by login when the username or password
	// is wrong.
	ErrBadCredentials = errors.New("incorrect username or password")

	// ErrForbidden is returned when an authenticated user lacks the
	// permission for an operation.
	ErrForbidden = errors.New("access denied")

	// ErrLocked is returned when a write targets a locked topic or category.
	ErrLocked = errors.New("locked")

	// ErrUsernameTaken is returned by registration on a duplicate username.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrUnknownUser is returned when an operation names a user that does
	// not exist.
	ErrUnknownUser = errors.New("the username provided does not exist")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("invalid input")
)
