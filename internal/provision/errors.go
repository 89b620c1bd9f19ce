package provision

import (
	stdErrors "errors"
	"net/http"

	f "github.com/fauna/faunadb-go/v4/faunadb"
	"github.com/pkg/errors"

	domainErr "github.com/Tanmoy095/authgate/internal/domain/errors"
)

const (
	codeAlreadyExists = "instance already exists"
	codeUnauthorized  = "unauthorized"
)

// PermissionError reports a key that is missing, invalid or not allowed to
// run a provisioning step.
type PermissionError struct {
	Err error
}

func (e *PermissionError) Error() string {
	return "unauthorized: missing or invalid fauna_server_secret, or not enough permissions"
}

func (e *PermissionError) Unwrap() []error {
	return []error{domainErr.ErrUnauthorized, e.Err}
}

// mapFaunaError sorts a driver error into the provisioning policy classes.
func mapFaunaError(err error, subject string) error {
	if err == nil {
		return nil
	}
	var fe f.FaunaError
	if !stdErrors.As(err, &fe) {
		return errors.Wrapf(domainErr.ErrBackendUnavailable, "%s: %v", subject, err)
	}
	if fe.Status() == http.StatusUnauthorized {
		return &PermissionError{Err: err}
	}
	for _, qe := range fe.Errors() {
		switch qe.Code {
		case codeAlreadyExists:
			return errors.Wrapf(domainErr.ErrAlreadyExists, "%s", subject)
		case codeUnauthorized:
			return &PermissionError{Err: err}
		}
	}
	return errors.Wrapf(err, "%s", subject)
}
