// Package clients provides the instrumented HTTP client for the remote backend.
package clients

import "errors"

// Client errors represent failures in the HTTP client layer.
// These are distinct from domain errors - they represent infrastructure failures
// that should be translated to domain errors by the calling code.
var (
	// ErrCircuitOpen is returned when the circuit breaker is open.
	// This indicates the backend is unhealthy and requests are being blocked.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRequestFailed is returned when the request could not produce a
	// response (transport failure, or all configured attempts exhausted).
	// The original error is wrapped for context.
	ErrRequestFailed = errors.New("request failed")
)
