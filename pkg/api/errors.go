package api

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthExpired is returned for any 401 or 403. The session has already
	// been cleared by the time a caller sees it; do not retry.
	ErrAuthExpired = errors.New("session expired, please log in again")

	// ErrMalformedResponse means a 2xx body did not have the expected shape.
	ErrMalformedResponse = errors.New("invalid data format received from server")
)

// RequestFailedError is any other non-2xx response.
type RequestFailedError struct {
	Status int
	Body   string
}

func (e *RequestFailedError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return fmt.Sprintf("HTTP error! Status: %d", e.Status)
}

// IsAuthExpired reports whether err, or anything it wraps, is ErrAuthExpired.
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}
