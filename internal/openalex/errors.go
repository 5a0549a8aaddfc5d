package openalex

import (
	"errors"
	"fmt"
	"net/http"
)

// Errors returned by the Client, possibly wrapped.
var (
	ErrNotFound        = errors.New("not found in OpenAlex")
	ErrAuthError       = errors.New("OpenAlex rejected the credentials")
	ErrRateLimited     = errors.New("OpenAlex rate limit exceeded")
	ErrNetworkError    = errors.New("could not reach OpenAlex")
	ErrInvalidResponse = errors.New("unexpected response from OpenAlex")
	ErrInvalidResume   = errors.New("invalid resume position")
)

// APIError is an error status returned by OpenAlex. It matches ErrNotFound,
// ErrAuthError or ErrRateLimited through errors.Is according to its status.
type APIError struct {
	StatusCode int
	Message    string
	Query      string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("OpenAlex returned %d: %s", e.StatusCode, e.Message)
	if e.Query != "" {
		msg += " (query: " + e.Query + ")"
	}
	return msg
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrAuthError:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsAuthError(err error) bool { return errors.Is(err, ErrAuthError) }
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }
