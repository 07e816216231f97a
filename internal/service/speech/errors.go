package speech

import "fmt"

// StatusError is a speech failure with the HTTP status it maps to.
type StatusError struct {
	Code   int
	Detail string
	Err    error
}

func (e *StatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Detail, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Detail)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func statusError(code int, detail string, err error) *StatusError {
	return &StatusError{Code: code, Detail: detail, Err: err}
}
