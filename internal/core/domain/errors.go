package domain

import (
	"errors"
	"fmt"
)

// QueryErrorKind classifies backend query failures.
type QueryErrorKind int

const (
	// QueryNetwork means the transport failed and no response was received.
	QueryNetwork QueryErrorKind = iota + 1
	// QueryServer means the backend answered with a non-success status.
	QueryServer
)

// QueryError is a failed venue/city/country/review query. Callers must
// surface it as an explicit error state, never as a silently empty list.
type QueryError struct {
	Kind   QueryErrorKind
	Status int // HTTP status for QueryServer, 0 otherwise
	Err    error
}

func (e *QueryError) Error() string {
	switch e.Kind {
	case QueryNetwork:
		return fmt.Sprintf("network error: %v", e.Err)
	case QueryServer:
		return fmt.Sprintf("server error (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("query error: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// NewNetworkError wraps a transport failure.
func NewNetworkError(err error) *QueryError {
	return &QueryError{Kind: QueryNetwork, Err: err}
}

// NewServerError wraps a non-success backend response.
func NewServerError(status int, err error) *QueryError {
	return &QueryError{Kind: QueryServer, Status: status, Err: err}
}

// IsQueryError extracts a QueryError from an error chain.
func IsQueryError(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

// LocationErrorKind classifies device-location failures.
type LocationErrorKind int

const (
	LocationPermissionDenied LocationErrorKind = iota + 1
	LocationUnavailable
	LocationTimeout
	LocationUnknown
)

// LocationError is a failed location fix. Location failures are isolated:
// they never affect city-scoped browsing.
type LocationError struct {
	Kind LocationErrorKind
	Err  error
}

func (e *LocationError) Error() string {
	switch e.Kind {
	case LocationPermissionDenied:
		return "location permission denied"
	case LocationUnavailable:
		return "location information is unavailable"
	case LocationTimeout:
		return "location request timed out"
	}
	if e.Err != nil {
		return fmt.Sprintf("location error: %v", e.Err)
	}
	return "unknown location error"
}

func (e *LocationError) Unwrap() error { return e.Err }

// NewLocationError builds a LocationError of the given kind.
func NewLocationError(kind LocationErrorKind, err error) *LocationError {
	return &LocationError{Kind: kind, Err: err}
}

// IsLocationError extracts a LocationError from an error chain.
func IsLocationError(err error) (*LocationError, bool) {
	var le *LocationError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// ValidationError reports invalid user input, e.g. an empty review field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError extracts a ValidationError from an error chain.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
