package repository

import "errors"

var (
	// ErrFetchFailed wraps every failure to retrieve the upstream page.
	ErrFetchFailed = errors.New("upstream fetch failed")
	// ErrFetchTimeout is joined with ErrFetchFailed when the fetch deadline passes.
	ErrFetchTimeout = errors.New("upstream fetch timed out")
	// ErrUpstreamStatus is joined with ErrFetchFailed on a non-2xx response.
	ErrUpstreamStatus = errors.New("upstream returned non-success status")
	// ErrCircuitOpen is joined with ErrFetchFailed when the breaker rejects the call.
	ErrCircuitOpen = errors.New("upstream circuit open")
)
