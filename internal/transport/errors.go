package transport

import "fmt"

// StatusError is a non-2xx backend answer.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Detail)
}

// TranscribeError carries a message suitable for showing to the user.
type TranscribeError struct {
	Message string
	Err     error
}

func (e *TranscribeError) Error() string {
	return e.Message
}

func (e *TranscribeError) Unwrap() error {
	return e.Err
}
