package entity

import "errors"

var (
	// ErrMalformedRequest is returned when a required field is missing from an inbound request.
	ErrMalformedRequest = errors.New("malformed request")
	// ErrExtractionMismatch marks a result row that lacks an expected structural marker.
	ErrExtractionMismatch = errors.New("result row does not match expected markup")
)
