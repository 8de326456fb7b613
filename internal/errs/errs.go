// Package errs holds the sentinel errors shared by the store, service and
// handler layers.
package errs

import "errors"

var (
	// ErrDuplicateUser indicates the username is already registered.
	ErrDuplicateUser = errors.New("duplicate user")

	// ErrInvalidCredentials indicates an unknown username or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrProvider indicates the identity provider rejected or failed the handshake.
	ErrProvider = errors.New("identity provider error")

	// ErrStoreUnavailable indicates a transient connectivity failure talking to a store.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidInput indicates missing form fields.
	ErrInvalidInput = errors.New("invalid input")
)
