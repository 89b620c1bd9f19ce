package auth

import (
	stdErrors "errors"

	domainErr "github.com/Tanmoy095/authgate/internal/domain/errors"
)

// Failure is the only detail a resolver keeps about a backend error. Callers
// still see a plain false; the class goes to logs and metrics.
type Failure string

const (
	AuthFailure        Failure = "auth_failure"
	BackendUnavailable Failure = "backend_unavailable"
)

// Classify flattens a backend error into one of the two failure classes.
// Bad credentials, a rejected token and a missing secret all read as
// AuthFailure so responses never reveal whether an email is registered.
func Classify(err error) Failure {
	if err == nil {
		return ""
	}
	if stdErrors.Is(err, domainErr.ErrBackendUnavailable) {
		return BackendUnavailable
	}
	// Remote errors on a 200 response, unauthorized tokens and anything unknown
	return AuthFailure
}
