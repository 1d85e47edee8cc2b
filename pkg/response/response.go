package response

import (
	"errors"
)

// Error is a domain error carrying the HTTP status it maps to.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}

// As unwraps err down to the first *Error, if any.
func As(err error) (*Error, bool) {
	var respErr *Error
	if errors.As(err, &respErr) {
		return respErr, true
	}
	return nil, false
}
