// internal/domain/errors/errors.domain.go
package errors

import "errors"

// Standard Sentinel Errors
// The backend client wraps these so resolvers and the HTTP layer can tell
// failure classes apart without inspecting driver-specific error types.

var (
	// Authentication Errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrMissingSecret      = errors.New("backend returned no secret")

	// Backend Errors
	ErrBackendUnavailable = errors.New("remote backend unavailable")
	ErrRemote             = errors.New("remote backend returned errors")

	// Gateway Errors
	ErrSchemaUnavailable = errors.New("schema could not be loaded")
	ErrInvalidInput      = errors.New("invalid input arguments")

	// Provisioning Errors
	ErrAlreadyExists = errors.New("instance already exists")
)
