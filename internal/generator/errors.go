package generator

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when the generator does not answer in time.
	ErrTimeout = errors.New("generator timed out")

	// ErrNetworkUnavailable is returned when the generator cannot be reached.
	ErrNetworkUnavailable = errors.New("generator unreachable: check the network connection, TLS certificates and CORS or proxy settings")

	// ErrMalformedResponse is returned when a successful response is missing
	// required fields or cannot be decoded.
	ErrMalformedResponse = errors.New("malformed generator response")
)

// RemoteError is a failure reported by the generator in its error body.
type RemoteError struct {
	Code      string
	Message   string
	Timestamp string
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("generator error %s: %s", e.Code, e.Message)
	}
	return "generator error: " + e.Message
}

// UnknownError is a non-success response whose body could not be decoded.
type UnknownError struct {
	Status int
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("generator returned unexpected status %d", e.Status)
}
