package httperr

import "errors"

// BusinessError is a domain rule violation carried as an opaque code;
// handlers translate it into the matching HTTP status.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// ConflictError carries the resolver's machine-readable reason plus the
// human-facing message for a 409 response.
type ConflictError struct {
	Code    string
	Message string
}

func (e ConflictError) Error() string {
	return e.Message
}

func ErrConflict(code, message string) error {
	return ConflictError{Code: code, Message: message}
}

func AsConflict(err error) (ConflictError, bool) {
	var ce ConflictError
	ok := errors.As(err, &ce)
	return ce, ok
}
