package scoring

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrResponseTooLarge is returned when the service response exceeds the read limit.
var ErrResponseTooLarge = errors.New("scoring response too large")

// NetworkError is a transport failure reaching the scoring service.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() (msg string) {
	msg = fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	return msg
}

func (e *NetworkError) Unwrap() (err error) {
	err = e.Err
	return err
}

// ServiceError is a non-success response. Body is the service's error text, verbatim.
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() (msg string) {
	msg = fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	return msg
}
