package main

import (
	"errors"

	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/openalex"
	"github.com/matsen/citegraph/internal/work"
)

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, I/O failure)
	ExitConfigError = 2 // Configuration error (invalid config file, env or flags)
	ExitDataError   = 3 // Data error (malformed JSONL input)
	ExitAPIError    = 4 // OpenAlex error (HTTP status, network, auth, rate limit)
)

// exitCodeFor maps an error returned by a command to its exit code.
func exitCodeFor(err error) int {
	var apiErr *openalex.APIError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, config.ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, work.ErrMalformedRecord):
		return ExitDataError
	case errors.As(err, &apiErr),
		errors.Is(err, openalex.ErrAuthError),
		errors.Is(err, openalex.ErrNetworkError),
		errors.Is(err, openalex.ErrInvalidResponse):
		return ExitAPIError
	}
	return ExitError
}
